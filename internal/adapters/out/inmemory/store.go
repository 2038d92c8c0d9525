// Package inmemory is a transactional in-memory store implementing the repository and unit
// of work ports. It keeps the write semantics of the PostgreSQL adapter: Get inside a
// transaction locks the row until Commit or Rollback, order updates are predicated on the
// status the order was loaded with, and loyalty balances change by atomic increments.
//
// It backs the development mode (STORE=memory) and the handler and concurrency tests.
package inmemory

import (
	"context"
	"sync"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
)

type courierRecord struct {
	ID                  kernel.UUID
	Name                string
	Phone               string
	IsAvailable         bool
	CurrentDeliveryID   *kernel.UUID
	TotalDeliveries     int
	CompletedDeliveries int
	Location            *kernel.GeoPoint
}

type customerRecord struct {
	ID              kernel.UUID
	Name            string
	Phone           string
	LoyaltyPoints   int64
	CompletedOrders int
}

// Store holds the committed state shared by all units of work.
type Store struct {
	mu        sync.RWMutex
	orders    map[kernel.UUID]order.Snapshot
	seq       map[kernel.UUID]int
	numbers   map[string]kernel.UUID
	couriers  map[kernel.UUID]courierRecord
	customers map[kernel.UUID]customerRecord
	nextSeq   int

	locksMu sync.Mutex
	locks   map[kernel.UUID]chan struct{}
}

func NewStore() *Store {
	return &Store{
		orders:    make(map[kernel.UUID]order.Snapshot),
		seq:       make(map[kernel.UUID]int),
		numbers:   make(map[string]kernel.UUID),
		couriers:  make(map[kernel.UUID]courierRecord),
		customers: make(map[kernel.UUID]customerRecord),
		locks:     make(map[kernel.UUID]chan struct{}),
	}
}

// lock acquires the row lock of id, waiting until it is free or ctx is done.
func (s *Store) lock(ctx context.Context, id kernel.UUID) error {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	s.locksMu.Unlock()

	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlock(id kernel.UUID) {
	s.locksMu.Lock()
	l := s.locks[id]
	s.locksMu.Unlock()
	<-l
}
