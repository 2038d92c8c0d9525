// Package services provides domain services that coordinate the Order and Courier
// aggregates.
//
// The package includes:
//   - OrderDispatcher: courier assignment, fan-out offers, acceptance and release, and
//     ranking of couriers by distance to the pickup address
//
// Domain services hold no state and never touch persistence; command handlers load the
// aggregates, call the service and save the results in one unit of work.
package services
