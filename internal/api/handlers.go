package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"crowd-safety-service/internal/alertstore"
	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/auth"
	"crowd-safety-service/internal/emergency"
	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/monitor"
	"crowd-safety-service/internal/ws"
)

// AckAuditor persists acknowledgment audit rows; nil disables auditing.
type AckAuditor interface {
	RecordAcknowledgment(ctx context.Context, alertID string, ack models.AuthorityAcknowledgment) error
}

type Handler struct {
	store       *alertstore.Store
	emergencies *emergency.Manager
	authSvc     *auth.Service
	monitorSvc  *monitor.Service
	hub         *ws.Hub
	auditor     AckAuditor
	logger      *logging.Logger
	upgrader    websocket.Upgrader
}

func NewHandler(store *alertstore.Store, emergencies *emergency.Manager, authSvc *auth.Service, monitorSvc *monitor.Service, hub *ws.Hub, auditor AckAuditor, logger *logging.Logger) *Handler {
	return &Handler{
		store:       store,
		emergencies: emergencies,
		authSvc:     authSvc,
		monitorSvc:  monitorSvc,
		hub:         hub,
		auditor:     auditor,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards are served from the portal origin; the portal's
			// reverse proxy enforces origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// writeError renders the standard {code, message, details} payload. Errors
// outside the taxonomy surface as an opaque internal error.
func writeError(c *gin.Context, err error) {
	if appErr := apperr.As(err); appErr != nil {
		c.JSON(appErr.HTTPStatus(), appErr)
		return
	}
	c.JSON(http.StatusInternalServerError, apperr.Internal(err))
}

func (h *Handler) GetEmergency(c *gin.Context) {
	c.JSON(http.StatusOK, h.emergencies.State())
}

type activateRequest struct {
	AreaID  string `json:"area_id"`
	Trigger string `json:"trigger"`
}

func (h *Handler) ActivateEmergency(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}
	trigger := models.EmergencyTrigger(req.Trigger)
	if req.Trigger == "" {
		trigger = models.TriggerManual
	}

	state, err := h.emergencies.Activate(req.AreaID, trigger, principalID(c))
	if err != nil {
		h.logger.Errorf("Activate emergency failed: %v", err)
		writeError(c, err)
		return
	}
	h.logger.Warnf("Emergency mode activated by %s (area=%q trigger=%s)", state.ActivatedBy, state.AreaID, state.Trigger)
	c.JSON(http.StatusOK, state)
}

func (h *Handler) DeactivateEmergency(c *gin.Context) {
	state, err := h.emergencies.Deactivate(principalID(c))
	if err != nil {
		h.logger.Errorf("Deactivate emergency failed: %v", err)
		writeError(c, err)
		return
	}
	h.logger.Infof("Emergency mode deactivated by %s", principalID(c))
	c.JSON(http.StatusOK, state)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	filter := alertstore.Filter{AreaID: c.Query("area")}

	if raw := c.Query("severity"); raw != "" {
		level, err := models.ParseThresholdLevel(raw)
		if err != nil {
			writeError(c, apperr.Validationf("invalid severity %q", raw).WithDetail("field", "severity"))
			return
		}
		filter.MinSeverity = &level
	}
	if raw := c.Query("acknowledged"); raw != "" {
		acked := raw == "true"
		filter.Acknowledged = &acked
	}

	alerts := h.store.List(filter)
	h.logger.Debugf("Listed %d alerts", len(alerts))
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) GetAlert(c *gin.Context) {
	alert, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

type acknowledgeRequest struct {
	AuthorityName string `json:"authority_name" binding:"required"`
	Notes         string `json:"notes"`
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	id := c.Param("id")

	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("authority_name is required").WithDetail("field", "authority_name"))
		return
	}

	alert, err := h.store.Acknowledge(id, models.AuthorityAcknowledgment{
		AuthorityID:   principalID(c),
		AuthorityName: req.AuthorityName,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Infof("Alert %s acknowledged by %s", id, principalID(c))

	if h.hub != nil {
		h.hub.Broadcast("alert_acknowledged", alert)
	}
	if h.auditor != nil {
		if err := h.auditor.RecordAcknowledgment(c.Request.Context(), alert.ID, *alert.Acknowledgment); err != nil {
			h.logger.Errorf("Acknowledgment audit write failed for %s: %v", alert.ID, err)
		}
	}
	c.JSON(http.StatusOK, alert)
}

type readingRequest struct {
	AreaID   string  `json:"area_id" binding:"required"`
	Density  float64 `json:"density"`
	Capacity float64 `json:"capacity"`
}

func (h *Handler) SubmitReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("area_id is required").WithDetail("field", "area_id"))
		return
	}

	level, err := h.monitorSvc.Submit(models.DensityReading{
		AreaID:   req.AreaID,
		Density:  req.Density,
		Capacity: req.Capacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area_id": req.AreaID, "level": level})
}

func (h *Handler) GetAreas(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorSvc.AreaSnapshots())
}

func (h *Handler) GetPrincipalPermissions(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"principal_id": id,
		"permissions":  h.authSvc.UserPermissions(id),
	})
}

// Dashboard serves the WebSocket feed of alert and emergency events.
func (h *Handler) Dashboard(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(conn)

	// Reader loop only detects closure; dashboards never send data.
	go func() {
		defer h.hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
