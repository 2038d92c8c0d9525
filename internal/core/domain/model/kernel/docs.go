// Package kernel holds the value objects shared across aggregates: UUID identifiers
// and GeoPoint coordinates. Zero values are invalid; build them with the constructors.
package kernel
