package order

import (
	"errors"
	"strings"
	"time"

	"shoecare/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Item is one line of an order.
type Item struct {
	Name     string
	Price    int64
	Quantity int
}

// NewItem validates a line item: name required, price >= 0, quantity >= 1.
func NewItem(name string, price int64, quantity int) (Item, error) {
	var joined []error
	if strings.TrimSpace(name) == "" {
		joined = append(joined, errs.NewValueIsRequiredError("item name"))
	}
	if price < 0 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("item price", price, 0, "max"))
	}
	if quantity < 1 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("item quantity", quantity, 1, "max"))
	}
	if err := errors.Join(joined...); err != nil {
		return Item{}, err
	}
	return Item{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}, nil
}

// Total is price x quantity.
func (i Item) Total() int64 {
	return i.Price * int64(i.Quantity)
}

// Subtotal sums the line totals.
func Subtotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Total()
	}
	return sum
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, it := range items {
		if _, err := NewItem(it.Name, it.Price, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Payment holds the amounts and payment state of an order.
type Payment struct {
	Subtotal       int64
	DeliveryFee    int64
	DiscountPoints int64
	FinalAmount    int64
	Amount         int64
	Status         PaymentStatus
	ProofImage     string
	PaidAt         *time.Time
}

// price recomputes the derived amounts; finalAmount = subtotal + deliveryFee - discountPoints.
func (p *Payment) price(items []Item) error {
	subtotal := Subtotal(items)
	final := subtotal + p.DeliveryFee - p.DiscountPoints
	if final < 0 {
		return errs.NewValueIsOutOfRangeError("discount points", p.DiscountPoints, 0, subtotal+p.DeliveryFee)
	}
	p.Subtotal = subtotal
	p.FinalAmount = final
	p.Amount = final
	return nil
}

// LoyaltyPoints records points earned and spent on an order.
type LoyaltyPoints struct {
	Earned   int64
	Used     int64
	Rate     decimal.Decimal
	Refunded bool
}

// EarnedPoints returns floor(subtotal x rate).
func EarnedPoints(subtotal int64, rate decimal.Decimal) int64 {
	if rate.IsNegative() || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(rate).Floor().IntPart()
}
