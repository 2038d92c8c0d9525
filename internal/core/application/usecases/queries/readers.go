// Package queries contains read operations for retrieving system state.
// Queries return read models shaped for the HTTP surface; they never modify aggregates.
package queries

import (
	"shoecare/internal/core/ports"
)

type (
	// Reader gives access to repositories outside a transaction.
	Reader interface {
		OrderRepository() ports.OrderRepository
		CourierRepository() ports.CourierRepository
	}

	// ReaderFactory creates readers. Unit of work factories satisfy it through an adapter.
	ReaderFactory interface {
		Create() Reader
	}
)
