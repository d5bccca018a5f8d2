package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microwave/internal/eventloop"
	"microwave/internal/logger"
	"microwave/internal/models"
	"microwave/internal/oven"
	"microwave/internal/repository"

	"github.com/google/uuid"
)

// ErrUnknownFood is returned by SelectFood for a food outside the configured set.
var ErrUnknownFood = errors.New("unknown food")

const persistTimeout = 2 * time.Second

// OvenSettings controls how the oven is driven.
type OvenSettings struct {
	TickInterval     time.Duration // one second of cook time elapses per tick
	RotationInterval time.Duration
	RotationStep     int // degrees per rotation step
	Foods            []string
}

// OvenService owns the oven and the pending timers. Every command and every
// timer callback runs on the event loop, so the fields below the loop are
// never touched concurrently.
type OvenService struct {
	loop      *eventloop.Loop
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	notifier  Notifier
	log       *logger.Logger
	settings  OvenSettings
	foods     map[string]struct{}

	oven  *oven.Oven
	tick  *eventloop.Deferred
	spin  *eventloop.Deferred
	angle int
	// operator of the command being executed; zero inside timer callbacks
	actor Operator
}

func NewOvenService(
	loop *eventloop.Loop,
	stateRepo repository.StateRepo,
	eventRepo repository.EventRepo,
	notifier Notifier,
	log *logger.Logger,
	settings OvenSettings,
) *OvenService {
	foods := make(map[string]struct{}, len(settings.Foods))
	for _, f := range settings.Foods {
		foods[f] = struct{}{}
	}
	return &OvenService{
		loop:      loop,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
		log:       log,
		settings:  settings,
		foods:     foods,
		oven:      oven.New(),
	}
}

// PowerOn persists the initial snapshot. The oven always powers on empty;
// a snapshot left by a previous run is overwritten.
func (s *OvenService) PowerOn(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		st := s.snapshot()
		s.persist(st)
		s.log.Infow("oven_power_on", "state", st.State, "foods", s.settings.Foods)
	})
}

// Foods returns the configured food choices.
func (s *OvenService) Foods() []string {
	out := make([]string, len(s.settings.Foods))
	copy(out, s.settings.Foods)
	return out
}

// Snapshot returns the live state.
func (s *OvenService) Snapshot(ctx context.Context) (models.OvenState, error) {
	var st models.OvenState
	err := s.loop.Do(ctx, func() { st = s.snapshot() })
	return st, err
}

func (s *OvenService) SetTime(ctx context.Context, seconds int) (Result, error) {
	return s.exec(ctx, "set_time", func() bool {
		if !s.oven.SetTime(seconds) {
			return false
		}
		s.record(models.EventTimeSet, "Time set to "+s.oven.TimeDisplay(), map[string]any{
			"time_left": s.oven.TimeLeft(),
		})
		return true
	})
}

func (s *OvenService) AddTime(ctx context.Context, seconds int) (Result, error) {
	return s.adjustTime(ctx, "add_time", seconds)
}

func (s *OvenService) SubtractTime(ctx context.Context, seconds int) (Result, error) {
	return s.adjustTime(ctx, "subtract_time", -seconds)
}

// adjustTime backs the +/- buttons, which are inert while the door is open.
func (s *OvenService) adjustTime(ctx context.Context, op string, delta int) (Result, error) {
	return s.exec(ctx, op, func() bool {
		if s.oven.DoorOpen() || !s.oven.AddTime(delta) {
			return false
		}
		s.record(models.EventTimeSet, fmt.Sprintf("Time adjusted by %+ds to %s", delta, s.oven.TimeDisplay()), map[string]any{
			"delta":     delta,
			"time_left": s.oven.TimeLeft(),
		})
		return true
	})
}

// SelectFood selects one of the configured foods; an empty food clears the selection.
func (s *OvenService) SelectFood(ctx context.Context, food string) (Result, error) {
	if _, ok := s.foods[food]; !ok && food != "" {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFood, food)
	}
	return s.exec(ctx, "select_food", func() bool {
		s.oven.SelectFood(food)
		desc := "Food cleared"
		if food != "" {
			desc = food + " selected"
		}
		s.record(models.EventFoodSelect, desc, map[string]any{"food": food})
		return true
	})
}

func (s *OvenService) Start(ctx context.Context) (Result, error) {
	return s.exec(ctx, "start", func() bool {
		resumed := s.oven.State() == oven.Paused
		if !s.oven.Start() {
			return false
		}
		s.scheduleTick()
		s.scheduleSpin()

		food, _ := s.oven.SelectedFood()
		desc := "Oven started"
		if resumed {
			desc = "Oven resumed"
		}
		s.record(models.EventStart, desc, map[string]any{
			"food":      food,
			"time_left": s.oven.TimeLeft(),
		})
		return true
	})
}

func (s *OvenService) Stop(ctx context.Context) (Result, error) {
	return s.exec(ctx, "stop", func() bool {
		s.oven.Stop()
		s.tick.Cancel()
		s.tick = nil
		s.spin.Cancel()
		s.spin = nil
		s.angle = 0
		s.record(models.EventStop, "Oven stopped", nil)
		return true
	})
}

func (s *OvenService) OpenDoor(ctx context.Context) (Result, error) {
	return s.exec(ctx, "open_door", func() bool {
		s.openDoor()
		return true
	})
}

func (s *OvenService) CloseDoor(ctx context.Context) (Result, error) {
	return s.exec(ctx, "close_door", func() bool {
		s.closeDoor()
		return true
	})
}

func (s *OvenService) ToggleDoor(ctx context.Context) (Result, error) {
	return s.exec(ctx, "toggle_door", func() bool {
		if s.oven.DoorOpen() {
			s.closeDoor()
		} else {
			s.openDoor()
		}
		return true
	})
}

// openDoor pauses a running oven. The pending tick is left armed: it fires,
// finds the oven paused and ends the countdown chain.
func (s *OvenService) openDoor() {
	if s.oven.DoorOpen() {
		return
	}
	wasRunning := s.oven.State() == oven.Running
	s.oven.OpenDoor()
	s.spin.Cancel()
	s.spin = nil

	s.record(models.EventDoorOpen, "Door opened", nil)
	if wasRunning {
		s.record(models.EventPause, "Oven paused", map[string]any{"time_left": s.oven.TimeLeft()})
	}
}

func (s *OvenService) closeDoor() {
	if !s.oven.DoorOpen() {
		return
	}
	s.oven.CloseDoor()
	s.record(models.EventDoorClose, "Door closed", nil)
}

// exec runs a command on the loop on behalf of the operator carried by ctx
// and persists the resulting snapshot when the command was accepted.
func (s *OvenService) exec(ctx context.Context, op string, fn func() bool) (Result, error) {
	actor, _ := OperatorFrom(ctx)
	var res Result
	err := s.loop.Do(ctx, func() {
		s.actor = actor
		defer func() { s.actor = Operator{} }()

		res.OK = fn()
		res.State = s.snapshot()
		if !res.OK {
			s.log.Infow("oven_command_rejected", "op", op, "operator", actor.Name, "state", res.State.State,
				"time_left", res.State.TimeLeft, "door_open", res.State.DoorOpen)
			return
		}
		s.persist(res.State)
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *OvenService) scheduleTick() {
	s.tick.Cancel()
	s.tick = s.loop.After(s.settings.TickInterval, s.onTick)
}

func (s *OvenService) onTick() {
	s.tick = nil
	switch s.oven.Tick() {
	case oven.TickAdvanced:
		s.tick = s.loop.After(s.settings.TickInterval, s.onTick)
		s.persist(s.snapshot())
	case oven.TickFinished:
		s.finish()
	case oven.TickIdle:
		// paused or stopped since the tick was armed
	}
}

func (s *OvenService) finish() {
	s.spin.Cancel()
	s.spin = nil
	s.angle = 0
	s.persist(s.snapshot())

	food, ok := s.oven.SelectedFood()
	if !ok {
		food = "Food"
	}
	msg := food + " is ready"
	s.record(models.EventFinish, msg, map[string]any{"food": food})

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Errorw("oven_notify_failed", "message", msg, "error", err)
	}
}

func (s *OvenService) scheduleSpin() {
	s.spin.Cancel()
	s.spin = s.loop.After(s.settings.RotationInterval, s.onSpin)
}

// onSpin turns the plate one step while the oven runs with the door closed.
func (s *OvenService) onSpin() {
	s.spin = nil
	if s.oven.State() != oven.Running || s.oven.DoorOpen() {
		return
	}
	s.angle = (s.angle + s.settings.RotationStep) % 360
	s.spin = s.loop.After(s.settings.RotationInterval, s.onSpin)
}

func (s *OvenService) snapshot() models.OvenState {
	food, hasFood := s.oven.SelectedFood()
	canStart := s.oven.CanStart()
	return models.OvenState{
		ID:            1,
		State:         s.oven.State().String(),
		TimeLeft:      s.oven.TimeLeft(),
		MaxTime:       oven.MaxTime,
		DoorOpen:      s.oven.DoorOpen(),
		SelectedFood:  food,
		Display:       s.oven.TimeDisplay(),
		Panel:         panelText(s.oven),
		CanStart:      canStart,
		StartReady:    canStart && hasFood,
		RotationAngle: s.angle,
		UpdatedAt:     s.loop.Clock().Now().UTC(),
	}
}

// persist stores the snapshot. Storage failures are logged and never undo
// the state change.
func (s *OvenService) persist(st models.OvenState) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.stateRepo.Save(ctx, st); err != nil {
		s.log.Errorw("oven_state_save_failed", "state", st.State, "error", err)
	}
}

func (s *OvenService) record(typ, desc string, meta map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	ev := models.OvenEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.loop.Clock().Now().UTC(),
		Type:        typ,
		Description: desc,
		OperatorID:  s.actor.ID,
		Operator:    s.actor.Name,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("oven_event_append_failed", "type", typ, "error", err)
		return
	}
	s.log.Infow("oven_event", "type", typ, "description", desc, "operator", s.actor.Name)
}
