// Package order implements the Order aggregate of the shoe-cleaning service and the
// rules that govern it.
//
// The package includes:
//   - Status: the lifecycle state machine, a central table of allowed transitions
//   - Ledger: the append-only status history, tracking details and edit history
//   - CourierQueue: outstanding courier offers with at-most-one acceptance
//   - Order: the aggregate root combining payment, loyalty points, queue and ledgers
//
// Key business rules:
//   - Status only advances along the transition table; cancelled is reachable from
//     every non-terminal status; completed and cancelled are terminal
//   - The last status history entry always carries the current status
//   - payment.finalAmount = subtotal + deliveryFee - discountPoints after create and edit
//   - At most one queue offer is accepted; activeCourier is set iff such an offer exists
//   - Used loyalty points are refunded once, on cancellation
//
// Changes made since the aggregate was loaded are exposed through Changes so stores can
// append ledger rows and issue status-predicated updates instead of rewriting the order.
package order
