package models

import "time"

// Event types recorded in the oven log.
const (
	EventTimeSet    = "TIME_SET"
	EventFoodSelect = "FOOD_SELECT"
	EventStart      = "START"
	EventStop       = "STOP"
	EventPause      = "PAUSE"
	EventFinish     = "FINISH"
	EventDoorOpen   = "DOOR_OPEN"
	EventDoorClose  = "DOOR_CLOSE"
)

// OvenEvent is a single log entry. OperatorID and Operator name the account
// that pressed the button; both are empty for events raised by the timer.
type OvenEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	OperatorID  int       `json:"operator_id,omitempty"`
	Operator    string    `json:"operator,omitempty"`
	Metadata    any       `json:"metadata,omitempty"`
}
