// Package courier provides the Courier aggregate: the availability state of a courier who
// picks shoes up from customers and brings them back after cleaning.
//
// Key business rules:
//   - A courier is unavailable while bound to an order leg and available again when the
//     leg ends (arrival at the workshop or delivery completion)
//   - currentDeliveryID points at the order the courier is bound to, if any
//   - Availability is a denormalized flag; Reconcile repairs it from the orders that
//     actually bind the courier
//
// Offers may still be queued for an unavailable courier; only acceptance is restricted.
package courier
