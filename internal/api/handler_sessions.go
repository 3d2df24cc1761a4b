package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
)

type openSessionRequest struct {
	UserID  string     `json:"userId"`
	LabID   int64      `json:"labId" binding:"required"`
	Device  int        `json:"device" binding:"required"`
	LoginAt *time.Time `json:"loginAt"`
}

// OpenSession handles POST /api/sessions: a workstation login event. The
// session is matched against the reservation that justified it, once.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = callerID(c)
	}

	event := store.LoginEvent{
		UserID: userID,
		LabID:  req.LabID,
		Device: req.Device,
	}
	if req.LoginAt != nil {
		event.At = *req.LoginAt
	}

	session, err := h.store.OpenSession(c.Request.Context(), event)
	if err != nil {
		writeError(c, err)
		return
	}

	if session.ReservationID != nil {
		h.dispatch(notification.Event{
			Kind:    notification.EventSessionMatched,
			UserID:  session.UserID,
			Message: fmt.Sprintf("login on PC %d matched reservation %d", session.Device, *session.ReservationID),
		})
	}
	c.JSON(http.StatusCreated, session)
}

type endSessionRequest struct {
	EndedAt *time.Time `json:"endedAt"`
}

// EndSession handles POST /api/sessions/:id/end.
func (h *Handler) EndSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req endSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	session, err := h.store.EndSession(c.Request.Context(), id, req.EndedAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
