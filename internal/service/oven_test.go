package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"microwave/internal/eventloop"
	"microwave/internal/logger"
	"microwave/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spinStep = 100 * time.Millisecond

type ovenHarness struct {
	svc      *OvenService
	loop     *eventloop.Loop
	clock    *eventloop.ManualClock
	states   *memStateRepo
	events   *fakeEventRepo
	notifier *recordingNotifier
}

func newOvenHarness(t *testing.T) *ovenHarness {
	t.Helper()
	clock := eventloop.NewManualClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	loop := eventloop.New(clock)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	h := &ovenHarness{
		loop:     loop,
		clock:    clock,
		states:   &memStateRepo{},
		events:   &fakeEventRepo{},
		notifier: &recordingNotifier{},
	}
	h.svc = NewOvenService(loop, h.states, h.events, h.notifier, logger.Nop(), OvenSettings{
		TickInterval:     time.Second,
		RotationInterval: spinStep,
		RotationStep:     5,
		Foods:            []string{"Chicken", "Pizza", "Soup"},
	})
	require.NoError(t, h.svc.PowerOn(ctx))
	return h
}

// advance moves the clock in rotation-sized steps, letting the loop drain
// after each one so rescheduled callbacks are armed before the next step.
func (h *ovenHarness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	for ; d > 0; d -= spinStep {
		h.clock.Advance(spinStep)
		require.NoError(t, h.loop.Do(context.Background(), func() {}))
	}
}

func (h *ovenHarness) state(t *testing.T) models.OvenState {
	t.Helper()
	st, err := h.svc.Snapshot(context.Background())
	require.NoError(t, err)
	return st
}

// cook sets time and food and starts the oven.
func (h *ovenHarness) cook(t *testing.T, seconds int, food string) {
	t.Helper()
	ctx := context.Background()
	res, err := h.svc.SetTime(ctx, seconds)
	require.NoError(t, err)
	require.True(t, res.OK)
	res, err = h.svc.SelectFood(ctx, food)
	require.NoError(t, err)
	require.True(t, res.OK)
	res, err = h.svc.Start(ctx)
	require.NoError(t, err)
	require.True(t, res.OK)
}

func TestOvenService_PowerOnPersistsWaiting(t *testing.T) {
	h := newOvenHarness(t)

	st := h.states.last()
	assert.Equal(t, "WAITING", st.State)
	assert.Equal(t, "00:00", st.Display)
	assert.Equal(t, "00:00\n(select food)", st.Panel)
	assert.Equal(t, 3600, st.MaxTime)
	assert.Empty(t, h.events.types())
}

func TestOvenService_CountdownToFinish(t *testing.T) {
	h := newOvenHarness(t)
	h.cook(t, 3, "Pizza")

	h.advance(t, 900*time.Millisecond)
	assert.Equal(t, 3, h.state(t).TimeLeft, "first tick is one interval after start")

	h.advance(t, 100*time.Millisecond)
	st := h.state(t)
	assert.Equal(t, 2, st.TimeLeft)
	assert.Equal(t, "RUNNING", st.State)
	assert.Equal(t, 2, h.states.last().TimeLeft, "each tick is persisted")

	h.advance(t, 2*time.Second)
	st = h.state(t)
	assert.Equal(t, "FINISHED", st.State)
	assert.Equal(t, 0, st.TimeLeft)
	assert.Equal(t, 0, st.RotationAngle)
	assert.Equal(t, []string{"Pizza is ready"}, h.notifier.messages())
	assert.Equal(t, 0, h.clock.Pending(), "nothing is armed after finishing")

	assert.Equal(t, []string{
		models.EventTimeSet, models.EventFoodSelect, models.EventStart, models.EventFinish,
	}, h.events.types())
	assert.Equal(t, "FINISHED", h.states.last().State)
}

func TestOvenService_RotationWhileRunning(t *testing.T) {
	h := newOvenHarness(t)
	h.cook(t, 60, "Soup")

	h.advance(t, 500*time.Millisecond)
	assert.Equal(t, 25, h.state(t).RotationAngle)

	_, err := h.svc.OpenDoor(context.Background())
	require.NoError(t, err)
	h.advance(t, 500*time.Millisecond)
	assert.Equal(t, 25, h.state(t).RotationAngle, "plate holds position while paused")

	_, err = h.svc.CloseDoor(context.Background())
	require.NoError(t, err)
	res, err := h.svc.Start(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK)
	h.advance(t, 200*time.Millisecond)
	assert.Equal(t, 35, h.state(t).RotationAngle)

	res, err = h.svc.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.State.RotationAngle)
}

func TestOvenService_RotationWrapsAt360(t *testing.T) {
	h := newOvenHarness(t)
	h.cook(t, 60, "Soup")

	h.advance(t, 73*spinStep)
	assert.Equal(t, 5, h.state(t).RotationAngle)
}

func TestOvenService_OpenDoorPausesAndEndsCountdown(t *testing.T) {
	h := newOvenHarness(t)
	h.cook(t, 30, "Chicken")
	h.advance(t, 2*time.Second)

	res, err := h.svc.OpenDoor(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "PAUSED", res.State.State)
	assert.Equal(t, 28, res.State.TimeLeft)
	assert.Equal(t, "DOOR OPEN", res.State.Panel)
	assert.Equal(t, 1, h.clock.Pending(), "pending tick stays armed")

	h.advance(t, 5*time.Second)
	assert.Equal(t, 28, h.state(t).TimeLeft)
	assert.Equal(t, 0, h.clock.Pending())

	res, err = h.svc.CloseDoor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PAUSED", res.State.State, "closing never resumes")

	res, err = h.svc.Start(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK)
	h.advance(t, time.Second)
	assert.Equal(t, 27, h.state(t).TimeLeft)

	types := h.events.types()
	assert.Equal(t, []string{
		models.EventDoorOpen, models.EventPause, models.EventDoorClose, models.EventStart,
	}, types[3:])
	assert.Equal(t, "Oven resumed", h.events.appended[len(types)-1].Description)
}

func TestOvenService_ResumeBeforeStaleTickKeepsSingleTick(t *testing.T) {
	h := newOvenHarness(t)
	ctx := context.Background()
	h.cook(t, 10, "Pizza")
	h.advance(t, 300*time.Millisecond)

	_, err := h.svc.OpenDoor(ctx)
	require.NoError(t, err)
	_, err = h.svc.CloseDoor(ctx)
	require.NoError(t, err)
	res, err := h.svc.Start(ctx)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 2, h.clock.Pending(), "one tick and one rotation step")

	h.advance(t, 700*time.Millisecond)
	assert.Equal(t, 10, h.state(t).TimeLeft, "stale tick was cancelled")

	h.advance(t, 300*time.Millisecond)
	assert.Equal(t, 9, h.state(t).TimeLeft)

	h.advance(t, 3*time.Second)
	assert.Equal(t, 6, h.state(t).TimeLeft)
}

func TestOvenService_StopCancelsTimers(t *testing.T) {
	h := newOvenHarness(t)
	h.cook(t, 10, "Pizza")
	h.advance(t, time.Second)

	res, err := h.svc.Stop(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "WAITING", res.State.State)
	assert.Equal(t, 0, res.State.TimeLeft)
	assert.Empty(t, res.State.SelectedFood)
	assert.Equal(t, 0, h.clock.Pending())

	h.advance(t, 3*time.Second)
	assert.Equal(t, 0, h.state(t).TimeLeft)
	assert.Empty(t, h.notifier.messages())
}

func TestOvenService_RejectedCommandsKeepState(t *testing.T) {
	h := newOvenHarness(t)
	ctx := context.Background()
	h.cook(t, 10, "Pizza")
	saved := len(h.states.saved)
	events := len(h.events.types())

	for name, cmd := range map[string]func() (Result, error){
		"set while running":      func() (Result, error) { return h.svc.SetTime(ctx, 20) },
		"add while running":      func() (Result, error) { return h.svc.AddTime(ctx, 5) },
		"subtract while running": func() (Result, error) { return h.svc.SubtractTime(ctx, 5) },
		"start while running":    func() (Result, error) { return h.svc.Start(ctx) },
	} {
		res, err := cmd()
		require.NoError(t, err, name)
		assert.False(t, res.OK, name)
		assert.Equal(t, "RUNNING", res.State.State, name)
		assert.Equal(t, 10, res.State.TimeLeft, name)
	}
	assert.Len(t, h.states.saved, saved)
	assert.Len(t, h.events.types(), events)
}

func TestOvenService_AdjustTime(t *testing.T) {
	h := newOvenHarness(t)
	ctx := context.Background()

	res, err := h.svc.AddTime(ctx, 90)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "01:30", res.State.Display)

	res, err = h.svc.SubtractTime(ctx, 100)
	require.NoError(t, err)
	assert.False(t, res.OK, "would go negative")
	assert.Equal(t, 90, res.State.TimeLeft)

	_, err = h.svc.OpenDoor(ctx)
	require.NoError(t, err)
	res, err = h.svc.AddTime(ctx, 10)
	require.NoError(t, err)
	assert.False(t, res.OK, "buttons are inert with the door open")

	res, err = h.svc.SetTime(ctx, 15)
	require.NoError(t, err)
	assert.True(t, res.OK, "set time does not check the door")
	assert.Equal(t, 15, res.State.TimeLeft)
}

func TestOvenService_SelectFood(t *testing.T) {
	h := newOvenHarness(t)
	ctx := context.Background()

	_, err := h.svc.SelectFood(ctx, "Sushi")
	assert.True(t, errors.Is(err, ErrUnknownFood))

	res, err := h.svc.SetTime(ctx, 10)
	require.NoError(t, err)
	assert.True(t, res.State.CanStart)
	assert.False(t, res.State.StartReady)

	res, err = h.svc.SelectFood(ctx, "Soup")
	require.NoError(t, err)
	assert.Equal(t, "Soup", res.State.SelectedFood)
	assert.Equal(t, "00:10\nSoup", res.State.Panel)
	assert.True(t, res.State.StartReady)

	res, err = h.svc.SelectFood(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, res.State.SelectedFood)

	assert.Equal(t, []string{"Chicken", "Pizza", "Soup"}, h.svc.Foods())
}

func TestOvenService_ToggleDoor(t *testing.T) {
	h := newOvenHarness(t)
	ctx := context.Background()

	res, err := h.svc.ToggleDoor(ctx)
	require.NoError(t, err)
	assert.True(t, res.State.DoorOpen)
	assert.False(t, res.State.CanStart)

	res, err = h.svc.ToggleDoor(ctx)
	require.NoError(t, err)
	assert.False(t, res.State.DoorOpen)

	// opening an open door records nothing new
	_, _ = h.svc.OpenDoor(ctx)
	_, _ = h.svc.OpenDoor(ctx)
	assert.Equal(t, []string{
		models.EventDoorOpen, models.EventDoorClose, models.EventDoorOpen,
	}, h.events.types())
}

func TestOvenService_StorageFailuresDoNotAbortCommands(t *testing.T) {
	h := newOvenHarness(t)
	h.states.saveErr = errors.New("disk full")
	h.events.appendErr = errors.New("disk full")

	h.cook(t, 2, "Chicken")
	h.advance(t, 2*time.Second)
	assert.Equal(t, "FINISHED", h.state(t).State)
	assert.Equal(t, []string{"Chicken is ready"}, h.notifier.messages())
}

func TestOvenService_StoppedLoop(t *testing.T) {
	loop := eventloop.New(eventloop.NewManualClock(time.Unix(0, 0)))
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	cancel()
	<-loop.Done()

	svc := NewOvenService(loop, &memStateRepo{}, &fakeEventRepo{}, &recordingNotifier{}, logger.Nop(), OvenSettings{})
	_, err := svc.Start(context.Background())
	assert.ErrorIs(t, err, eventloop.ErrStopped)
	_, err = svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, eventloop.ErrStopped)
}

func TestOvenService_EventsCarryOperator(t *testing.T) {
	h := newOvenHarness(t)
	alice := WithOperator(context.Background(), Operator{ID: 7, Name: "alice"})

	res, err := h.svc.SetTime(alice, 1)
	require.NoError(t, err)
	require.True(t, res.OK)
	_, err = h.svc.SelectFood(alice, "Soup")
	require.NoError(t, err)
	_, err = h.svc.Start(alice)
	require.NoError(t, err)

	h.advance(t, time.Second)
	require.Equal(t, "FINISHED", h.state(t).State)

	// an anonymous command after a named one must not inherit the name
	_, err = h.svc.OpenDoor(context.Background())
	require.NoError(t, err)

	events := h.events.all()
	require.Len(t, events, 5)
	for _, ev := range events[:3] {
		assert.Equal(t, 7, ev.OperatorID, ev.Type)
		assert.Equal(t, "alice", ev.Operator, ev.Type)
	}
	assert.Equal(t, models.EventFinish, events[3].Type)
	assert.Zero(t, events[3].OperatorID, "finish is raised by the timer")
	assert.Empty(t, events[3].Operator)
	assert.Equal(t, models.EventDoorOpen, events[4].Type)
	assert.Zero(t, events[4].OperatorID)
}
