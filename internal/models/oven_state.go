package models

import "time"

// OvenState is a point-in-time snapshot of the microwave.
type OvenState struct {
	ID int `json:"id"`

	// WAITING, RUNNING, FINISHED or PAUSED
	State string `json:"state"`

	// seconds
	TimeLeft int  `json:"time_left"`
	MaxTime  int  `json:"max_time"`
	DoorOpen bool `json:"door_open"`

	// empty when none selected
	SelectedFood string `json:"selected_food,omitempty"`

	// Display is MM:SS; Panel is what the front panel shows, door state included.
	Display string `json:"display"`
	Panel   string `json:"panel"`

	// CanStart: door closed, time set, startable state. StartReady adds a selected food.
	CanStart   bool `json:"can_start"`
	StartReady bool `json:"start_ready"`

	// turntable angle in degrees
	RotationAngle int       `json:"rotation_angle"`
	UpdatedAt     time.Time `json:"updated_at"`
}
