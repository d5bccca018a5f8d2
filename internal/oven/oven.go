// Package oven holds the microwave state machine: door, timer and food selection.
// It has no dependencies; callers drive it with commands and Tick.
package oven

import "fmt"

// MaxTime is the longest cook time in seconds.
const MaxTime = 60 * 60

// State is the oven's operating state.
type State int

const (
	Waiting State = iota
	Running
	Finished
	Paused
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	case Paused:
		return "PAUSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TickResult reports what a single Tick did.
type TickResult int

const (
	TickIdle     TickResult = iota // not running, nothing changed
	TickAdvanced                   // one second consumed, still running
	TickFinished                   // reached zero, now FINISHED
)

func (r TickResult) String() string {
	switch r {
	case TickAdvanced:
		return "tick"
	case TickFinished:
		return "finished"
	default:
		return "not running"
	}
}

// Oven is the microwave state machine. It is not safe for concurrent use;
// the owner serializes all calls.
type Oven struct {
	state    State
	timeLeft int
	doorOpen bool
	food     string
}

// New returns an oven in WAITING with no time, door closed and no food.
func New() *Oven {
	return &Oven{state: Waiting}
}

func (o *Oven) State() State   { return o.state }
func (o *Oven) TimeLeft() int  { return o.timeLeft }
func (o *Oven) DoorOpen() bool { return o.doorOpen }

// SelectedFood returns the selected food and whether one is selected.
func (o *Oven) SelectedFood() (string, bool) {
	return o.food, o.food != ""
}

// SelectFood stores an opaque food identifier. An empty id clears the selection.
func (o *Oven) SelectFood(id string) {
	o.food = id
}

// SetTime sets the remaining time. It fails while running or when seconds is
// outside [0, MaxTime].
func (o *Oven) SetTime(seconds int) bool {
	if o.state == Running {
		return false
	}
	if seconds < 0 || seconds > MaxTime {
		return false
	}
	o.timeLeft = seconds
	return true
}

// AddTime adds seconds to the remaining time. The whole call fails if the
// result would leave [0, MaxTime].
func (o *Oven) AddTime(seconds int) bool {
	// keeps timeLeft+seconds from overflowing
	if seconds > MaxTime || seconds < -MaxTime {
		return false
	}
	return o.SetTime(o.timeLeft + seconds)
}

// SubtractTime removes seconds from the remaining time; see AddTime.
func (o *Oven) SubtractTime(seconds int) bool {
	if seconds > MaxTime || seconds < -MaxTime {
		return false
	}
	return o.SetTime(o.timeLeft - seconds)
}

// Start moves WAITING or PAUSED to RUNNING. The door must be closed, some
// time must be set and a food must be selected.
func (o *Oven) Start() bool {
	if o.doorOpen || o.timeLeft <= 0 || o.food == "" {
		return false
	}
	if o.state != Waiting && o.state != Paused {
		return false
	}
	o.state = Running
	return true
}

// Stop resets to WAITING with no time and no food. Safe to call in any state.
func (o *Oven) Stop() {
	o.state = Waiting
	o.timeLeft = 0
	o.food = ""
}

// OpenDoor opens the door. A running oven is paused with its time kept.
func (o *Oven) OpenDoor() {
	o.doorOpen = true
	if o.state == Running {
		o.state = Paused
	}
}

// CloseDoor closes the door. It never resumes a paused oven.
func (o *Oven) CloseDoor() {
	o.doorOpen = false
}

// Tick consumes one second while running.
func (o *Oven) Tick() TickResult {
	if o.state != Running || o.timeLeft <= 0 {
		return TickIdle
	}
	o.timeLeft--
	if o.timeLeft == 0 {
		o.state = Finished
		return TickFinished
	}
	return TickAdvanced
}

// TimeDisplay formats the remaining time as zero-padded MM:SS.
func (o *Oven) TimeDisplay() string {
	return fmt.Sprintf("%02d:%02d", o.timeLeft/60, o.timeLeft%60)
}

// CanStart reports whether the door is closed, time is set and the state
// allows starting. Food selection is not part of it.
func (o *Oven) CanStart() bool {
	return !o.doorOpen && o.timeLeft > 0 && (o.state == Waiting || o.state == Paused)
}
