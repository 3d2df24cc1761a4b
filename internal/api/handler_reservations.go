package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
)

type createReservationRequest struct {
	LabID     int64  `json:"labId" binding:"required"`
	PC        int    `json:"pc" binding:"required"`
	Date      string `json:"date"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Category  string `json:"category"`
	UserID    string `json:"userId"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := req.UserID
	if userID == "" || !isAdmin(c) {
		userID = callerID(c)
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
		return
	}
	if (req.Category == model.CategoryClassBlock || req.Category == model.CategoryMaintenance) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required for " + req.Category + " reservations"})
		return
	}

	reservation := model.Reservation{
		UserID:    userID,
		Category:  req.Category,
		LabID:     req.LabID,
		PC:        req.PC,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := h.store.AdmitReservation(c.Request.Context(), &reservation); err != nil {
		writeError(c, err)
		return
	}

	h.invalidate("/api/reservations")
	h.dispatch(notification.Event{
		Kind:    notification.EventReservationAdmitted,
		UserID:  reservation.UserID,
		Message: fmt.Sprintf("PC %d reserved %s %s-%s", reservation.PC, reservation.Date, reservation.StartTime, reservation.EndTime),
	})
	c.JSON(http.StatusCreated, reservation)
}

// ListReservations handles GET /api/reservations.
func (h *Handler) ListReservations(c *gin.Context) {
	filter := store.ReservationFilter{
		Date:   c.Query("date"),
		UserID: c.Query("user"),
		Status: c.Query("status"),
	}
	if v := c.Query("lab"); v != "" {
		labID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lab id"})
			return
		}
		filter.LabID = labID
	}
	if v := c.Query("pc"); v != "" {
		pc, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pc number"})
			return
		}
		filter.PC = pc
	}

	reservations, err := h.store.ListReservations(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

type updateReservationRequest struct {
	PC        *int    `json:"pc"`
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

// UpdateReservation handles PUT /api/reservations/:id.
func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !isAdmin(c) {
		existing, err := h.store.GetReservation(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if existing.UserID != callerID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this reservation"})
			return
		}
	}

	reservation, err := h.store.UpdateReservation(c.Request.Context(), id, store.ReservationUpdate{
		PC:        req.PC,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/reservations")
	c.JSON(http.StatusOK, reservation)
}

// FinishReservation handles POST /api/reservations/:id/finish. Soft
// release: only the status flips.
func (h *Handler) FinishReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.FinishReservation(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/reservations")
	c.Status(http.StatusNoContent)
}

// DeleteReservation handles DELETE /api/reservations/:id.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !isAdmin(c) {
		existing, err := h.store.GetReservation(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if existing.UserID != callerID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this reservation"})
			return
		}
	}
	if err := h.store.DeleteReservation(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/reservations")
	c.Status(http.StatusNoContent)
}

type finishDayRequest struct {
	Date string `json:"date"`
}

// FinishDay handles POST /api/reservations/finish-day: the end-of-day
// release of every active non-maintenance reservation.
func (h *Handler) FinishDay(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return
	}
	var req finishDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	released, err := h.store.FinishDay(c.Request.Context(), req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/reservations")
	c.JSON(http.StatusOK, gin.H{"released": released})
}

// pathID parses a numeric path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
