package handlers

import (
	"errors"
	"net/http"

	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidBodyPref = "invalid body: "
	errStorage         = "history storage unavailable"
	errBus             = "device bus unavailable"
	errInternal        = "internal error"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// serviceError maps the service error classes to status codes. Validation
// messages are returned to the caller; everything else is logged.
func (h *Handler) serviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrValidation):
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errStorage, logKey, err, kv...)
	case errors.Is(err, service.ErrBusUnavailable):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errBus, logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}

// ModeRequest selects the operating mode.
type ModeRequest struct {
	// Allowed: AUTO, MANUAL
	Mode string `json:"mode" binding:"required" example:"AUTO"`
}

// FieldRequest sets the field geometry and motor speed together.
type FieldRequest struct {
	FieldLength int `json:"field_length" example:"120"`
	FieldWidth  int `json:"field_width" example:"40"`
	// Motor PWM, 1..255
	MotorSpeed int `json:"motor_speed" example:"200"`
}

// ManualRequest drives the device by hand.
type ManualRequest struct {
	// Allowed: FORWARD, BACKWARD, LEFT, RIGHT, STOP
	Direction string `json:"direction" binding:"required" example:"STOP"`
}

// FeederRequest switches the feeder.
type FeederRequest struct {
	// Allowed: ON, OFF
	State string `json:"state" binding:"required" example:"ON"`
}

// @Summary      Health check
// @Description  Degraded while the bus is disconnected or the last history write failed.
// @Tags         system
// @Produce      json
// @Success      200  {object}  service.HealthReport
// @Failure      503  {object}  service.HealthReport
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	report := h.services.Check(c.Request.Context())
	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

// @Summary      Full coop state
// @Description  Every state slot; slots never reported carry set=false.
// @Tags         coop
// @Produce      json
// @Success      200  {object}  map[string]models.State
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/coop/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Snapshot())
}

// @Summary      Latest temperature and fan state
// @Tags         coop
// @Produce      json
// @Success      200  {object}  service.StatusView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/coop/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status())
}

// @Summary      Latest cycle, segment and obstacle reports
// @Tags         coop
// @Produce      json
// @Success      200  {object}  service.StatusesView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/coop/statuses [get]
// @Security     BearerAuth
func (h *Handler) getStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Statuses())
}

// @Summary      Set mode
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        body  body      ModeRequest  true  "Mode payload"
// @Success      200   {object}  service.CommandResult  "suppressed"
// @Success      202   {object}  service.CommandResult  "forwarded"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req ModeRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.submit(c, models.Command{Kind: models.CommandMode, Text: req.Mode})
}

// @Summary      Set field and motor speed
// @Description  Length and width must be positive, speed in 1..255. The three values are applied as one unit.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        body  body      FieldRequest  true  "Field payload"
// @Success      200   {object}  service.CommandResult  "suppressed"
// @Success      202   {object}  service.CommandResult  "forwarded"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/field [post]
// @Security     BearerAuth
func (h *Handler) setField(c *gin.Context) {
	var req FieldRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.submit(c, models.Command{
		Kind:  models.CommandField,
		Field: models.FieldSetting{Length: req.FieldLength, Width: req.FieldWidth, Speed: req.MotorSpeed},
	})
}

// @Summary      Manual drive
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        body  body      ManualRequest  true  "Direction payload"
// @Success      200   {object}  service.CommandResult  "suppressed"
// @Success      202   {object}  service.CommandResult  "forwarded"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/manual [post]
// @Security     BearerAuth
func (h *Handler) manualControl(c *gin.Context) {
	var req ManualRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.submit(c, models.Command{Kind: models.CommandManual, Text: req.Direction})
}

// @Summary      Switch feeder
// @Description  Suppressed when the feeder already reports the requested state.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        body  body      FeederRequest  true  "Feeder payload"
// @Success      200   {object}  service.CommandResult  "suppressed"
// @Success      202   {object}  service.CommandResult  "forwarded"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/feeder [post]
// @Security     BearerAuth
func (h *Handler) feederControl(c *gin.Context) {
	var req FeederRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.submit(c, models.Command{Kind: models.CommandFeeder, Text: req.State})
}

func (h *Handler) submit(c *gin.Context, cmd models.Command) {
	res, err := h.services.Submit(c.Request.Context(), cmd)
	if err != nil {
		h.serviceError(c, "command_failed", err, "kind", cmd.Kind)
		return
	}
	code := http.StatusOK
	if res.Outcome == service.OutcomeForwarded {
		code = http.StatusAccepted
	}
	c.JSON(code, res)
}

// @Summary      Record coop stats
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      service.CoopStatsInput  true  "Inventory snapshot"
// @Success      201   {object}  models.CoopStats
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/stats [post]
// @Security     BearerAuth
func (h *Handler) recordCoopStats(c *gin.Context) {
	var in service.CoopStatsInput
	if !h.bindJSONOrBadRequest(c, &in) {
		return
	}
	rec, err := h.services.RecordCoopStats(c.Request.Context(), in)
	if err != nil {
		h.serviceError(c, "coop_stats_record_failed", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary      Record sales
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      service.SalesInput  true  "Sales snapshot"
// @Success      201   {object}  models.SalesLog
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/coop/sales [post]
// @Security     BearerAuth
func (h *Handler) recordSales(c *gin.Context) {
	var in service.SalesInput
	if !h.bindJSONOrBadRequest(c, &in) {
		return
	}
	rec, err := h.services.RecordSales(c.Request.Context(), in)
	if err != nil {
		h.serviceError(c, "sales_record_failed", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
