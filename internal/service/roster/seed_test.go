package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/rider-roster/internal/domain/rider"
)

func TestSampleRidersAreValid(t *testing.T) {
	fv := rider.NewFieldValidator()
	for _, in := range SampleRiders() {
		assert.Empty(t, fv.Validate(in), in.Email)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	inserted, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	inserted, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	res, err := store.List(ctx, rider.ListQuery{Search: "jane"})
	require.NoError(t, err)
	require.Len(t, res.Riders, 1)
	assert.Equal(t, rider.VehicleBicycle, res.Riders[0].Vehicle)
	assert.Equal(t, 4.9, res.Riders[0].Rating)
	assert.Equal(t, 189, res.Riders[0].RidesCompleted)
}

func TestReset(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	inserted, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
