package kernel

import (
	"errors"
	"fmt"
	"math"

	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0

	earthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when validating a zero-value GeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a WGS84 coordinate pair (pickup addresses, courier positions).
type GeoPoint struct { //nolint:recvcheck // value object
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	var joined []error
	if lat < minLatitude || lat > maxLatitude {
		joined = append(joined, errs.NewValueIsOutOfRangeError("latitude", lat, minLatitude, maxLatitude))
	}
	if lng < minLongitude || lng > maxLongitude {
		joined = append(joined, errs.NewValueIsOutOfRangeError("longitude", lng, minLongitude, maxLongitude))
	}
	if err := errors.Join(joined...); err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{lat: lat, lng: lng, guard: guard.NewConstructorGuard()}, nil
}

func (p GeoPoint) Lat() float64 {
	return p.lat
}

func (p GeoPoint) Lng() float64 {
	return p.lng
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// DistanceKm returns the great-circle distance to other in kilometres.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}
	lat1, lat2 := p.lat*math.Pi/180, other.lat*math.Pi/180
	dLat := lat2 - lat1
	dLng := (other.lng - p.lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h))), nil
}
