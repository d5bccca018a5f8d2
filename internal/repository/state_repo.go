package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"microwave/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	ovenStateRowID = 1

	upsertStateSQL = `
		INSERT INTO oven_state (id, state, time_left, door_open, food, display, panel, can_start, start_ready, angle, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state=excluded.state,
			time_left=excluded.time_left,
			door_open=excluded.door_open,
			food=excluded.food,
			display=excluded.display,
			panel=excluded.panel,
			can_start=excluded.can_start,
			start_ready=excluded.start_ready,
			angle=excluded.angle,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, state, time_left, door_open, food, display, panel, can_start, start_ready, angle, updated_at
		FROM oven_state WHERE id=?
	`
)

// nullableFood maps "no food selected" to SQL NULL.
func nullableFood(food string) sql.NullString {
	return sql.NullString{String: food, Valid: food != ""}
}

// Save upserts the oven_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.OvenState) error {
	ts := state.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		ovenStateRowID,
		state.State,
		state.TimeLeft,
		state.DoorOpen,
		nullableFood(state.SelectedFood),
		state.Display,
		state.Panel,
		state.CanStart,
		state.StartReady,
		state.RotationAngle,
		ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save oven state: %w", err)
	}
	return nil
}

// Load fetches the oven_state row. A zero snapshot (ID 0) means nothing was
// saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.OvenState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, ovenStateRowID)

	var (
		s    models.OvenState
		food sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.State,
		&s.TimeLeft,
		&s.DoorOpen,
		&food,
		&s.Display,
		&s.Panel,
		&s.CanStart,
		&s.StartReady,
		&s.RotationAngle,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OvenState{}, nil
		}
		return models.OvenState{}, fmt.Errorf("load oven state: %w", err)
	}
	s.SelectedFood = food.String
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
