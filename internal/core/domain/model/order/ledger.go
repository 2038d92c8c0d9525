package order

import (
	"time"

	"shoecare/internal/core/domain/model/kernel"
)

// Ledger is an append-only sequence. Entries appended since the aggregate was loaded are
// reported by Pending so a store can insert them as new rows.
type Ledger[T any] struct {
	entries   []T
	persisted int
}

func restoreLedger[T any](entries []T) Ledger[T] {
	cp := make([]T, len(entries))
	copy(cp, entries)
	return Ledger[T]{entries: cp, persisted: len(cp)}
}

func (l *Ledger[T]) append(entry T) {
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all entries in append order.
func (l Ledger[T]) Entries() []T {
	out := make([]T, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l Ledger[T]) Len() int {
	return len(l.entries)
}

// Last returns the most recent entry.
func (l Ledger[T]) Last() (T, bool) {
	if len(l.entries) == 0 {
		var zero T
		return zero, false
	}
	return l.entries[len(l.entries)-1], true
}

// Pending returns the entries appended since the last load or markPersisted.
func (l Ledger[T]) Pending() []T {
	out := make([]T, len(l.entries)-l.persisted)
	copy(out, l.entries[l.persisted:])
	return out
}

func (l *Ledger[T]) markPersisted() {
	l.persisted = len(l.entries)
}

// StatusEntry is one status history record.
type StatusEntry struct {
	Status    Status
	At        time.Time
	ActorID   string
	ActorName string
	Notes     string
	Proof     string
	Location  *kernel.GeoPoint
}

// TrackingDetail is one customer-facing progress record.
type TrackingDetail struct {
	Stage    TrackingStage
	At       time.Time
	ActorID  string
	Notes    string
	Location *kernel.GeoPoint
}

// EditRecord captures an item edit made after creation.
type EditRecord struct {
	At             time.Time
	ActorID        string
	ActorName      string
	Reason         string
	ItemsBefore    []Item
	ItemsAfter     []Item
	SubtotalBefore int64
	SubtotalAfter  int64
}

// Tracking is the customer-facing progress of an order.
type Tracking struct {
	CurrentStage  TrackingStage
	CourierID     *kernel.UUID
	PickupTime    *time.Time
	CompletedTime *time.Time
}
