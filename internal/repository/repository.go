package repository

import (
	"context"
	"database/sql"
	"time"

	"microwave/internal/models"
)

// OperatorRepo stores the accounts allowed to drive the oven.
type OperatorRepo interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
}

// StateRepo stores the latest oven snapshot (single row).
type StateRepo interface {
	Save(ctx context.Context, s models.OvenState) error
	Load(ctx context.Context) (models.OvenState, error)
}

// EventQuery narrows an event listing. Zero values leave a field unfiltered.
type EventQuery struct {
	From     time.Time
	To       time.Time
	Type     string
	Operator string
}

// EventRepo is the append-only oven event log.
type EventRepo interface {
	Append(ctx context.Context, e models.OvenEvent) error
	List(ctx context.Context, q EventQuery) ([]models.OvenEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Operators OperatorRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Operators: NewOperatorSQLite(db),
	}
}
