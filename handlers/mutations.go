package handlers

import (
	"net/http"
	"time"

	"pod-tracker-api/models"
	"pod-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// defaultCheckInMethod is used when a check-in omits the payment method.
const defaultCheckInMethod = "app"

type MutationsHandler struct {
	engine *services.MutationEngine
	bus    services.Publisher
}

func NewMutationsHandler(engine *services.MutationEngine, bus services.Publisher) *MutationsHandler {
	return &MutationsHandler{engine: engine, bus: bus}
}

type SetCleanlinessRequest struct {
	Cleanliness *int `json:"cleanliness" binding:"required"`
}

func (h *MutationsHandler) SetCleanliness(c *gin.Context) {
	id, ok := parsePodID(c)
	if !ok {
		return
	}
	var req SetCleanlinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cleanliness field is required"})
		return
	}

	pod, err := h.engine.SetCleanliness(c.Request.Context(), id, *req.Cleanliness)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pod)
}

type SetStatusRequest struct {
	Available    *bool `json:"available"`
	SelfCleaning *bool `json:"self_cleaning"`
}

func (h *MutationsHandler) SetStatus(c *gin.Context) {
	id, ok := parsePodID(c)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pod, err := h.engine.SetStatus(c.Request.Context(), id, req.Available, req.SelfCleaning)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pod)
}

type CheckInRequest struct {
	PodID  *uint  `json:"podId" binding:"required"`
	Method string `json:"method"`
}

func (h *MutationsHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podId field is required"})
		return
	}
	method := req.Method
	if method == "" {
		method = defaultCheckInMethod
	}

	pod, err := h.engine.CheckIn(c.Request.Context(), *req.PodID, method)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "pod": pod})
}

type ReportRequest struct {
	PodID *uint  `json:"podId" binding:"required"`
	Note  string `json:"note"`
}

// Report broadcasts a report-submitted event. Nothing is persisted and the
// pod itself is not touched.
func (h *MutationsHandler) Report(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podId field is required"})
		return
	}

	event := models.ReportEvent{
		PodID:     *req.PodID,
		Note:      req.Note,
		Timestamp: time.Now().UTC(),
	}
	if err := h.bus.Publish(c.Request.Context(), services.EventReportSubmitted, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to broadcast report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
