package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"microwave/internal/models"
	"microwave/internal/oven"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshotter struct {
	state models.OvenState
	err   error
}

func (s stubSnapshotter) Snapshot(context.Context) (models.OvenState, error) {
	return s.state, s.err
}

func TestMonitoringService_PrefersLiveState(t *testing.T) {
	repo := &memStateRepo{loadErr: errors.New("must not be read")}
	svc := NewMonitoringService(stubSnapshotter{state: models.OvenState{ID: 1, State: "RUNNING", TimeLeft: 9}}, repo)

	got, err := svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RUNNING", got.State)
	assert.Equal(t, 9, got.TimeLeft)
}

func TestMonitoringService_StoredState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		repo   *memStateRepo
		assert func(t *testing.T, got models.OvenState, err error)
	}{
		{
			name: "propagates repository error",
			repo: &memStateRepo{loadErr: errors.New("db down")},
			assert: func(t *testing.T, _ models.OvenState, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "returns baseline when nothing stored",
			repo: &memStateRepo{},
			assert: func(t *testing.T, got models.OvenState, err error) {
				require.NoError(t, err)
				assert.Equal(t, 1, got.ID)
				assert.Equal(t, "WAITING", got.State)
				assert.Zero(t, got.TimeLeft)
				assert.False(t, got.DoorOpen)
				assert.Equal(t, "00:00", got.Display)
				assert.Equal(t, "00:00\n(select food)", got.Panel)
				assert.Equal(t, oven.MaxTime, got.MaxTime)
				assert.Equal(t, time.UTC, got.UpdatedAt.Location())
			},
		},
		{
			name: "normalizes stored UpdatedAt to UTC",
			repo: &memStateRepo{saved: []models.OvenState{{
				ID:        1,
				State:     "PAUSED",
				TimeLeft:  42,
				UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -3*3600)),
			}}},
			assert: func(t *testing.T, got models.OvenState, err error) {
				require.NoError(t, err)
				assert.Equal(t, "PAUSED", got.State)
				assert.Equal(t, 42, got.TimeLeft)
				want := time.Date(2025, 1, 2, 6, 4, 5, 0, time.UTC)
				assert.True(t, got.UpdatedAt.Equal(want), "UpdatedAt: %v", got.UpdatedAt)
				assert.Equal(t, time.UTC, got.UpdatedAt.Location())
				assert.Equal(t, oven.MaxTime, got.MaxTime, "max time is filled")
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewMonitoringService(nil, tc.repo).GetState(context.Background())
			tc.assert(t, got, err)
		})
	}
}
