package service

import (
	"context"
	"time"

	"microwave/internal/models"
	"microwave/internal/oven"
	"microwave/internal/repository"
)

// Snapshotter reads the live oven state.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.OvenState, error)
}

type MonitoringService struct {
	live      Snapshotter
	stateRepo repository.StateRepo
}

// NewMonitoringService reads from live when it is set and from the stored
// snapshot otherwise, e.g. for the CLI running without the server.
func NewMonitoringService(live Snapshotter, stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{live: live, stateRepo: stateRepo}
}

// GetState returns the current oven state.
// If nothing is persisted yet, returns a powered-on baseline snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.OvenState, error) {
	if s.live != nil {
		return s.live.Snapshot(ctx)
	}
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.OvenState{}, err
	}
	if state.ID == 0 {
		return baselineState(), nil
	}
	state.MaxTime = oven.MaxTime
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineState is the snapshot of a freshly powered-on oven.
func baselineState() models.OvenState {
	o := oven.New()
	return models.OvenState{
		ID:        1, // DB schema enforces single-row state with id=1
		State:     o.State().String(),
		MaxTime:   oven.MaxTime,
		Display:   o.TimeDisplay(),
		Panel:     panelText(o),
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
