package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"shoecare/internal/adapters/out/events"
	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
	"shoecare/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit without a preceding Begin.
var ErrNoTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store      *Store
	dispatcher *events.Dispatcher
}

// NewUnitOfWorkFactory creates a factory. A nil dispatcher drops domain events.
func NewUnitOfWorkFactory(store *Store, dispatcher *events.Dispatcher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store, dispatcher: dispatcher}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store, dispatcher: f.dispatcher}
}

type orderWrite struct {
	snap     order.Snapshot
	isNew    bool
	expected order.Status
}

type courierWrite struct {
	rec   courierRecord
	isNew bool
}

type pointDelta struct {
	customerID kernel.UUID
	delta      int64
}

// UnitOfWork buffers writes and applies them atomically on Commit. Outside Begin every
// write is applied immediately.
type UnitOfWork struct {
	store      *Store
	dispatcher *events.Dispatcher

	active bool
	held   []kernel.UUID

	orders      map[kernel.UUID]orderWrite
	couriers    map[kernel.UUID]courierWrite
	newCustomer []customerRecord
	registered  map[kernel.UUID]bool
	deltas      []pointDelta
	completions []kernel.UUID
	tracked     []events.Source
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.active = true
	u.reset()
	return nil
}

// Commit applies the buffered writes, releases the row locks and publishes the domain
// events of the saved orders.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	err := u.flush()
	tracked := u.tracked
	u.release()
	if err != nil {
		return err
	}
	u.dispatcher.Dispatch(ctx, tracked)
	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return nil
	}
	u.release()
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: u}
}

func (u *UnitOfWork) CourierRepository() ports.CourierRepository {
	return &courierRepository{uow: u}
}

func (u *UnitOfWork) CustomerRepository() ports.CustomerRepository {
	return &customerRepository{uow: u}
}

func (u *UnitOfWork) reset() {
	u.orders = make(map[kernel.UUID]orderWrite)
	u.couriers = make(map[kernel.UUID]courierWrite)
	u.newCustomer = nil
	u.registered = nil
	u.deltas = nil
	u.completions = nil
	u.tracked = nil
}

func (u *UnitOfWork) release() {
	for _, id := range u.held {
		u.store.unlock(id)
	}
	u.held = nil
	u.active = false
	u.reset()
}

// lockRow takes the row lock of id for the rest of the transaction.
func (u *UnitOfWork) lockRow(ctx context.Context, id kernel.UUID) error {
	if !u.active {
		return nil
	}
	for _, h := range u.held {
		if h.IsEqual(id) {
			return nil
		}
	}
	if err := u.store.lock(ctx, id); err != nil {
		return err
	}
	u.held = append(u.held, id)
	return nil
}

// write stages a change. Outside Begin the change is committed at once.
func (u *UnitOfWork) write(ctx context.Context, stage func() error) error {
	if u.active {
		return stage()
	}
	u.active = true
	u.reset()
	if err := stage(); err != nil {
		u.release()
		return err
	}
	return u.Commit(ctx)
}

func (u *UnitOfWork) track(src events.Source) {
	u.tracked = append(u.tracked, src)
}

// flush validates every buffered write against the committed state and applies all of
// them, or none.
func (u *UnitOfWork) flush() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := u.checkOrders(); err != nil {
		return err
	}
	for id, w := range u.couriers {
		_, exists := s.couriers[id]
		if w.isNew && exists {
			return fmt.Errorf("%w: courier %s", errs.ErrAlreadyExists, id)
		}
		if !w.isNew && !exists {
			return errs.NewObjectNotFoundError("courier", id.String())
		}
	}
	for _, c := range u.newCustomer {
		if _, exists := s.customers[c.ID]; exists && !u.registered[c.ID] {
			return fmt.Errorf("%w: customer %s", errs.ErrAlreadyExists, c.ID)
		}
	}
	balances := make(map[kernel.UUID]int64)
	for _, d := range u.deltas {
		rec, ok := s.customers[d.customerID]
		for _, c := range u.newCustomer {
			if !ok && c.ID.IsEqual(d.customerID) {
				rec, ok = c, true
			}
		}
		if !ok {
			return errs.NewObjectNotFoundError("customer", d.customerID.String())
		}
		if _, seen := balances[d.customerID]; !seen {
			balances[d.customerID] = rec.LoyaltyPoints
		}
		balances[d.customerID] += d.delta
		if balances[d.customerID] < 0 {
			return customer.ErrInsufficientPoints
		}
	}

	for id, w := range u.orders {
		if w.isNew {
			s.nextSeq++
			s.seq[id] = s.nextSeq
			s.numbers[w.snap.Number] = id
		}
		s.orders[id] = w.snap
	}
	for id, w := range u.couriers {
		s.couriers[id] = w.rec
	}
	for _, c := range u.newCustomer {
		if _, exists := s.customers[c.ID]; exists {
			continue
		}
		s.customers[c.ID] = c
	}
	for id, balance := range balances {
		rec := s.customers[id]
		rec.LoyaltyPoints = balance
		s.customers[id] = rec
	}
	for _, id := range u.completions {
		if rec, ok := s.customers[id]; ok {
			rec.CompletedOrders++
			s.customers[id] = rec
		}
	}
	return nil
}

func (u *UnitOfWork) checkOrders() error {
	s := u.store
	for id, w := range u.orders {
		stored, exists := s.orders[id]
		if w.isNew {
			if exists {
				return errs.NewValueIsInvalidError(fmt.Sprintf("order %s already exists", id))
			}
			if _, taken := s.numbers[w.snap.Number]; taken {
				return errs.NewValueIsInvalidError(fmt.Sprintf("order number %s already exists", w.snap.Number))
			}
		} else {
			if !exists {
				return errs.NewObjectNotFoundError("order", id.String())
			}
			if stored.Status != w.expected {
				return fmt.Errorf("%w: order %s is %s, expected %s",
					errs.ErrConcurrentUpdate, stored.Number, stored.Status, w.expected)
			}
		}
		if err := checkOffers(w.snap.Offers); err != nil {
			return err
		}
	}
	return nil
}

// checkOffers enforces the uniqueness the PostgreSQL adapter gets from partial indexes:
// one pending offer per courier and one accepted offer per order.
func checkOffers(offers []order.CourierOffer) error {
	accepted := 0
	pending := make(map[kernel.UUID]struct{})
	for _, o := range offers {
		switch o.Status {
		case order.OfferAccepted:
			accepted++
		case order.OfferPending:
			if _, dup := pending[o.CourierID]; dup {
				return fmt.Errorf("%w: courier %s", errs.ErrDuplicateOffer, o.CourierID)
			}
			pending[o.CourierID] = struct{}{}
		}
	}
	if accepted > 1 {
		return errs.ErrAlreadyAssigned
	}
	return nil
}

// visibleOrders returns committed orders overlaid with this transaction's writes, newest
// first.
func (u *UnitOfWork) visibleOrders() []order.Snapshot {
	s := u.store
	s.mu.RLock()
	byID := make(map[kernel.UUID]order.Snapshot, len(s.orders))
	seq := make(map[kernel.UUID]int, len(s.seq))
	for id, snap := range s.orders {
		byID[id] = snap
		seq[id] = s.seq[id]
	}
	s.mu.RUnlock()

	for id, w := range u.orders {
		byID[id] = w.snap
		if _, ok := seq[id]; !ok {
			seq[id] = int(^uint(0) >> 1)
		}
	}

	out := make([]order.Snapshot, 0, len(byID))
	for _, snap := range byID {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return seq[out[i].ID] > seq[out[j].ID]
	})
	return out
}

func (u *UnitOfWork) visibleOrder(id kernel.UUID) (order.Snapshot, bool) {
	if w, ok := u.orders[id]; ok {
		return w.snap, true
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	snap, ok := u.store.orders[id]
	return snap, ok
}

func (u *UnitOfWork) visibleCourier(id kernel.UUID) (courierRecord, bool) {
	if w, ok := u.couriers[id]; ok {
		return w.rec, true
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	rec, ok := u.store.couriers[id]
	return rec, ok
}

func (u *UnitOfWork) visibleCustomer(id kernel.UUID) (customerRecord, bool) {
	u.store.mu.RLock()
	rec, ok := u.store.customers[id]
	u.store.mu.RUnlock()
	for _, c := range u.newCustomer {
		if c.ID.IsEqual(id) {
			rec, ok = c, true
		}
	}
	if !ok {
		return customerRecord{}, false
	}
	for _, d := range u.deltas {
		if d.customerID.IsEqual(id) {
			rec.LoyaltyPoints += d.delta
		}
	}
	for _, c := range u.completions {
		if c.IsEqual(id) {
			rec.CompletedOrders++
		}
	}
	return rec, true
}
