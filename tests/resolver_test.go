package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/service"
)

func TestResolveNoBaseline(t *testing.T) {
	e := newEnv()

	rng, err := e.resolver.Resolve(context.Background(), register, model.ClosureX, nil)
	require.NoError(t, err)

	assert.True(t, rng.Start.Equal(time.Unix(0, 0)))
	assert.True(t, rng.End.After(rng.Start))
	assert.False(t, rng.End.After(time.Now().UTC()))
}

func TestResolveStartsAtLastFinalizedZ(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	end := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, e.closures.Append(ctx, &model.ReportClosure{
		ID:           uuid.New(),
		RegisterCode: register,
		ClosureType:  model.ClosureZ,
		RangeStart:   time.Unix(0, 0).UTC(),
		RangeEnd:     end,
		ResetApplied: true,
	}))

	rng, err := e.resolver.Resolve(ctx, register, model.ClosureX, nil)
	require.NoError(t, err)
	assert.True(t, rng.Start.Equal(end))
}

func TestResolveIgnoresNonFinalizedClosures(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	// Persisted Y closures and non-finalized Z rows never move the baseline.
	require.NoError(t, e.closures.Append(ctx, &model.ReportClosure{
		ID:           uuid.New(),
		RegisterCode: register,
		ClosureType:  model.ClosureY,
		RangeEnd:     time.Now().UTC().Add(-time.Minute),
	}))

	rng, err := e.resolver.Resolve(ctx, register, model.ClosureX, nil)
	require.NoError(t, err)
	assert.True(t, rng.Start.Equal(time.Unix(0, 0)))
}

func TestResolveBaselinePerRegister(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	require.NoError(t, e.closures.Append(ctx, &model.ReportClosure{
		ID:           uuid.New(),
		RegisterCode: "REG-01",
		ClosureType:  model.ClosureZ,
		RangeEnd:     time.Now().UTC().Add(-time.Minute),
		ResetApplied: true,
	}))

	rng, err := e.resolver.Resolve(ctx, "REG-02", model.ClosureX, nil)
	require.NoError(t, err)
	assert.True(t, rng.Start.Equal(time.Unix(0, 0)))
}

func TestResolveYRequiresSession(t *testing.T) {
	e := newEnv()

	_, err := e.resolver.Resolve(context.Background(), register, model.ClosureY, nil)
	assert.ErrorIs(t, err, service.ErrNoActiveSession)
}

func TestResolveFutureBaselineRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	require.NoError(t, e.closures.Append(ctx, &model.ReportClosure{
		ID:           uuid.New(),
		RegisterCode: register,
		ClosureType:  model.ClosureZ,
		RangeEnd:     time.Now().UTC().Add(time.Hour),
		ResetApplied: true,
	}))

	_, err := e.resolver.Resolve(ctx, register, model.ClosureX, nil)
	assert.ErrorIs(t, err, service.ErrRangeComputation)
}

func TestResolveLedgerReadFailure(t *testing.T) {
	e := newEnv()
	e.closures.baselineErr = assert.AnError

	_, err := e.resolver.Resolve(context.Background(), register, model.ClosureX, nil)
	assert.ErrorIs(t, err, service.ErrRangeComputation)
}

func TestResolveMonotonicBaseline(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	var prev time.Time
	for i := 0; i < 3; i++ {
		rng, err := e.resolver.Resolve(ctx, register, model.ClosureZ, nil)
		require.NoError(t, err)
		assert.False(t, rng.Start.Before(prev))

		require.NoError(t, e.closures.Append(ctx, &model.ReportClosure{
			ID:           uuid.New(),
			RegisterCode: register,
			ClosureType:  model.ClosureZ,
			RangeStart:   rng.Start,
			RangeEnd:     rng.End,
			ResetApplied: true,
		}))
		prev = rng.End
	}
}
