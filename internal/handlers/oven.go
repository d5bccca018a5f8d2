package handlers

import (
	"context"
	"errors"
	"net/http"

	"microwave/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusTimeSet     = "time_set"
	statusFoodSet     = "food_selected"
	statusStarted     = "started"
	statusStopped     = "stopped"
	statusDoorOpened  = "door_opened"
	statusDoorClosed  = "door_closed"
	statusDoorToggled = "door_toggled"

	errRejected        = "command rejected in current state"
	errOvenUnavailable = "oven unavailable"
	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// runCommand executes an oven command and maps its outcome to a response:
// accepted 200, refused by the oven 409, unknown food 400, anything else 500.
func (h *Handler) runCommand(c *gin.Context, status, logKey string, cmd func(ctx context.Context) (service.Result, error)) {
	res, err := cmd(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrUnknownFood):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "foods": h.services.Oven.Foods()})
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errOvenUnavailable, logKey, err)
	case !res.OK:
		c.JSON(http.StatusConflict, gin.H{"error": errRejected, "state": res.State})
	default:
		c.JSON(http.StatusOK, gin.H{"status": status, "state": res.State})
	}
}

// TimeRequest is the payload for setting or adjusting the cook time.
type TimeRequest struct {
	// Seconds to set, add or subtract
	Seconds *int `json:"seconds" binding:"required" example:"90"`
}

// FoodRequest is the payload for selecting a food. An empty food clears the selection.
type FoodRequest struct {
	Food string `json:"food" example:"Pizza"`
}

func (h *Handler) bindTime(c *gin.Context) (int, bool) {
	var req TimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return 0, false
	}
	return *req.Seconds, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get oven state
// @Tags         oven
// @Produce      json
// @Success      200  {object}  models.OvenState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/oven/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "oven_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      List selectable foods
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/oven/foods [get]
// @Security     BearerAuth
func (h *Handler) getFoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"foods": h.services.Oven.Foods()})
}

// @Summary      Set cook time
// @Description  Rejected while running or outside 0..3600 seconds
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body      TimeRequest  true  "Seconds"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]interface{}  "error, state"
// @Router       /api/v1/oven/time [put]
// @Security     BearerAuth
func (h *Handler) setTime(c *gin.Context) {
	seconds, ok := h.bindTime(c)
	if !ok {
		return
	}
	h.runCommand(c, statusTimeSet, "oven_set_time_failed", func(ctx context.Context) (service.Result, error) {
		return h.services.Oven.SetTime(ctx, seconds)
	})
}

// @Summary      Add cook time
// @Description  Ignored while the door is open or the oven is running
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body      TimeRequest  true  "Seconds"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]interface{}  "error, state"
// @Router       /api/v1/oven/time/add [post]
// @Security     BearerAuth
func (h *Handler) addTime(c *gin.Context) {
	seconds, ok := h.bindTime(c)
	if !ok {
		return
	}
	h.runCommand(c, statusTimeSet, "oven_add_time_failed", func(ctx context.Context) (service.Result, error) {
		return h.services.Oven.AddTime(ctx, seconds)
	})
}

// @Summary      Subtract cook time
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body      TimeRequest  true  "Seconds"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]interface{}  "error, state"
// @Router       /api/v1/oven/time/subtract [post]
// @Security     BearerAuth
func (h *Handler) subtractTime(c *gin.Context) {
	seconds, ok := h.bindTime(c)
	if !ok {
		return
	}
	h.runCommand(c, statusTimeSet, "oven_subtract_time_failed", func(ctx context.Context) (service.Result, error) {
		return h.services.Oven.SubtractTime(ctx, seconds)
	})
}

// @Summary      Select food
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body      FoodRequest  true  "Food"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]interface{}
// @Router       /api/v1/oven/food [put]
// @Security     BearerAuth
func (h *Handler) selectFood(c *gin.Context) {
	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	h.runCommand(c, statusFoodSet, "oven_select_food_failed", func(ctx context.Context) (service.Result, error) {
		return h.services.Oven.SelectFood(ctx, req.Food)
	})
}

// @Summary      Start or resume
// @Description  Requires door closed, time set and a food selected
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      409  {object}  map[string]interface{}  "error, state"
// @Router       /api/v1/oven/start [post]
// @Security     BearerAuth
func (h *Handler) start(c *gin.Context) {
	h.runCommand(c, statusStarted, "oven_start_failed", h.services.Oven.Start)
}

// @Summary      Stop and reset
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Router       /api/v1/oven/stop [post]
// @Security     BearerAuth
func (h *Handler) stop(c *gin.Context) {
	h.runCommand(c, statusStopped, "oven_stop_failed", h.services.Oven.Stop)
}

// @Summary      Open the door
// @Description  Pauses a running oven
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Router       /api/v1/oven/door/open [post]
// @Security     BearerAuth
func (h *Handler) openDoor(c *gin.Context) {
	h.runCommand(c, statusDoorOpened, "oven_open_door_failed", h.services.Oven.OpenDoor)
}

// @Summary      Close the door
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Router       /api/v1/oven/door/close [post]
// @Security     BearerAuth
func (h *Handler) closeDoor(c *gin.Context) {
	h.runCommand(c, statusDoorClosed, "oven_close_door_failed", h.services.Oven.CloseDoor)
}

// @Summary      Toggle the door
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Router       /api/v1/oven/door/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleDoor(c *gin.Context) {
	h.runCommand(c, statusDoorToggled, "oven_toggle_door_failed", h.services.Oven.ToggleDoor)
}
