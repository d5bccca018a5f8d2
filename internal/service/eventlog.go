package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"microwave/internal/models"
	"microwave/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrInvalidOperator  = errors.New("invalid operator name")
)

var eventTypes = map[string]struct{}{
	models.EventTimeSet:    {},
	models.EventFoodSelect: {},
	models.EventStart:      {},
	models.EventStop:       {},
	models.EventPause:      {},
	models.EventFinish:     {},
	models.EventDoorOpen:   {},
	models.EventDoorClose:  {},
}

// normalizeFilter moves times to UTC, uppercases the type, lowercases the
// operator and validates all three.
func normalizeFilter(f LogFilter) (LogFilter, error) {
	f.From = toUTC(f.From)
	f.To = toUTC(f.To)
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	f.Type = strings.TrimSpace(strings.ToUpper(f.Type))
	if f.Type != "" {
		if _, ok := eventTypes[f.Type]; !ok {
			return LogFilter{}, fmt.Errorf("%w: %q", ErrInvalidEventType, f.Type)
		}
	}

	f.Operator = normalizeUsername(f.Operator)
	if f.Operator != "" && !usernamePattern.MatchString(f.Operator) {
		return LogFilter{}, fmt.Errorf("%w: %q", ErrInvalidOperator, f.Operator)
	}
	return f, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.OvenEvent, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, repository.EventQuery{
		From:     f.From,
		To:       f.To,
		Type:     f.Type,
		Operator: f.Operator,
	})
}
