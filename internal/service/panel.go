package service

import "microwave/internal/oven"

const (
	panelDoorOpen = "DOOR OPEN"
	panelNoFood   = "(select food)"
)

// panelText is what the front display shows: the door warning replaces
// everything, otherwise the countdown above the food name.
func panelText(o *oven.Oven) string {
	if o.DoorOpen() {
		return panelDoorOpen
	}
	food, ok := o.SelectedFood()
	if !ok {
		food = panelNoFood
	}
	return o.TimeDisplay() + "\n" + food
}
