package service

import (
	"time"

	"microwave/internal/models"
)

// Result is the outcome of an oven command. OK is false when the oven
// refused the command (wrong state, door open, out of range); State is the
// snapshot after the command either way.
type Result struct {
	OK    bool
	State models.OvenState
}

// LogFilter supports history filtering by time range, type and operator.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "" or one of the models.Event* types
	Operator string    // "" or a username
}
