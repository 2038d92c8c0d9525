package queries

import (
	"errors"
	"strings"

	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var (
	ErrTrackOrderQueryIsNotConstructed = errors.New("TrackOrderQuery must be created via NewTrackOrderQuery constructor")
	ErrOrderNumberIsRequired           = errs.NewValueIsRequiredError("order number")
)

// TrackOrderQuery looks an order up by its public number. Anyone holding the number may
// track the order, so the result carries no customer or courier details.
type TrackOrderQuery struct {
	number string
	guard  guard.ConstructorGuard
}

func NewTrackOrderQuery(number string) (TrackOrderQuery, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return TrackOrderQuery{}, ErrOrderNumberIsRequired
	}
	return TrackOrderQuery{number: number, guard: guard.NewConstructorGuard()}, nil
}

func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

func (q TrackOrderQuery) Number() string {
	return q.number
}
