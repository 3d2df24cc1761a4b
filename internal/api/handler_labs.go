package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListLabs handles GET /api/labs: the PC partition plus free-use modes.
func (h *Handler) ListLabs(c *gin.Context) {
	labs, err := h.store.ListLabs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, labs)
}

// GetSchedule handles GET /api/labs/:lab_id/schedule?from=&to=: the
// occupied blocks the rendering collaborator paints.
func (h *Handler) GetSchedule(c *gin.Context) {
	labID, ok := pathID(c, "lab_id")
	if !ok {
		return
	}
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to dates are required"})
		return
	}
	if _, err := h.store.GetLab(c.Request.Context(), labID); err != nil {
		writeError(c, err)
		return
	}
	blocks, err := h.store.Schedule(c.Request.Context(), labID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

type labModeRequest struct {
	FreeUse *bool `json:"freeUse" binding:"required"`
}

// SetLabMode handles PUT /api/labs/:lab_id/mode: toggles the lab's
// free/unrestricted-use flag. The core persists and returns the flag;
// broadcasting it is the push collaborator's concern.
func (h *Handler) SetLabMode(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return
	}
	labID, ok := pathID(c, "lab_id")
	if !ok {
		return
	}
	var req labModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lab, err := h.store.SetLabFreeUse(c.Request.Context(), labID, *req.FreeUse)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/labs")
	c.JSON(http.StatusOK, lab)
}
