package service

import (
	"context"

	"microwave/internal/models"
	"microwave/internal/repository"
)

// Operators manages the accounts whose button presses are attributed in
// the event log.
type Operators interface {
	Register(ctx context.Context, username, password string) (int, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(accessToken string) (Operator, error)
}

// Oven exposes the front-panel controls. A refused command is reported
// through Result.OK; errors are reserved for unknown foods and for the
// controller being unavailable. The operator attached to ctx with
// WithOperator is recorded on every event a command produces.
type Oven interface {
	SetTime(ctx context.Context, seconds int) (Result, error)
	AddTime(ctx context.Context, seconds int) (Result, error)
	SubtractTime(ctx context.Context, seconds int) (Result, error)
	SelectFood(ctx context.Context, food string) (Result, error)
	Start(ctx context.Context) (Result, error)
	Stop(ctx context.Context) (Result, error)
	OpenDoor(ctx context.Context) (Result, error)
	CloseDoor(ctx context.Context) (Result, error)
	ToggleDoor(ctx context.Context) (Result, error)
	Foods() []string
}

// Monitoring exposes read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (models.OvenState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.OvenEvent, error)
}

type Service struct {
	Oven
	Monitoring
	EventLog
	Operators
}

// NewService wires the repository layer and the running oven controller into
// the services the handlers use.
func NewService(repos *repository.Repository, controller *OvenService, auth AuthSettings) *Service {
	return &Service{
		Oven:       controller,
		Monitoring: NewMonitoringService(controller, repos.StateRepo),
		EventLog:   NewEventLogService(repos.EventRepo),
		Operators:  NewOperatorService(repos.Operators, auth),
	}
}
