package kernel_test

import (
	"testing"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	validUUID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should create unique UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
	})

	t.Run("should parse string forms", func(t *testing.T) {
		for _, s := range []string{
			validUUID,
			"{550e8400-e29b-41d4-a716-446655440000}",
			"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
			"550e8400e29b41d4a716446655440000",
		} {
			id, err := kernel.UUIDFromString(s)
			require.NoError(t, err, s)
			assert.Equal(t, validUUID, id.String())
		}
	})

	t.Run("should reject malformed and nil strings", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = kernel.UUIDFromString(uuid.Nil.String())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should round trip bytes", func(t *testing.T) {
		id := kernel.NewUUID()
		raw := id.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, restored.IsEqual(id))
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var id kernel.UUID

		assert.True(t, id.IsZero())
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, id.Validate())
	})
}

func TestGeoPoint(t *testing.T) {
	t.Run("should accept bounds", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(-6.2, 106.8)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.InDelta(t, -6.2, p.Lat(), 1e-9)
		assert.InDelta(t, 106.8, p.Lng(), 1e-9)
	})

	t.Run("should reject out of range coordinates", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(91, 181)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "latitude")
		assert.Contains(t, err.Error(), "longitude")
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var p kernel.GeoPoint

		assert.Equal(t, kernel.ErrGeoPointIsNotConstructed, p.Validate())
	})
}

func TestGeoPoint_DistanceKm(t *testing.T) {
	jakarta, err := kernel.NewGeoPoint(-6.2088, 106.8456)
	require.NoError(t, err)
	bandung, err := kernel.NewGeoPoint(-6.9175, 107.6191)
	require.NoError(t, err)

	d, err := jakarta.DistanceKm(bandung)
	require.NoError(t, err)
	assert.InDelta(t, 116.0, d, 3.0)

	self, err := jakarta.DistanceKm(jakarta)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, self, 1e-9)

	_, err = jakarta.DistanceKm(kernel.GeoPoint{})
	assert.ErrorIs(t, err, kernel.ErrGeoPointIsNotConstructed)
}
