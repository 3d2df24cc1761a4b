package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

type classRequestBody struct {
	LabID      int64  `json:"labId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Kind       string `json:"kind" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	EndTime    string `json:"endTime" binding:"required"`
	Date       string `json:"date"`
	RangeStart string `json:"rangeStart"`
	RangeEnd   string `json:"rangeEnd"`
	Weekdays   string `json:"weekdays"`
}

// CreateRequest handles POST /api/requests.
func (h *Handler) CreateRequest(c *gin.Context) {
	var body classRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requester := callerID(c)
	if requester == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
		return
	}

	request := model.ClassRequest{
		RequesterID: requester,
		LabID:       body.LabID,
		Title:       body.Title,
		Kind:        body.Kind,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Date:        body.Date,
		RangeStart:  body.RangeStart,
		RangeEnd:    body.RangeEnd,
		Weekdays:    body.Weekdays,
	}
	if err := h.store.CreateRequest(c.Request.Context(), &request); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListRequests handles GET /api/requests.
func (h *Handler) ListRequests(c *gin.Context) {
	filter := store.RequestFilter{
		State:       c.Query("state"),
		RequesterID: c.Query("requester"),
	}
	if v := c.Query("lab"); v != "" {
		labID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lab id"})
			return
		}
		filter.LabID = labID
	}
	requests, err := h.store.ListRequests(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetRequest handles GET /api/requests/:id.
func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	request, err := h.store.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// UpdateRequest handles PUT /api/requests/:id. Only the requester (or an
// administrator) may modify a request, and only while it is pending.
func (h *Handler) UpdateRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body classRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.store.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !isAdmin(c) && existing.RequesterID != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this request"})
		return
	}

	request, err := h.store.UpdateRequest(c.Request.Context(), id, &model.ClassRequest{
		Title:      body.Title,
		Kind:       body.Kind,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Date:       body.Date,
		RangeStart: body.RangeStart,
		RangeEnd:   body.RangeEnd,
		Weekdays:   body.Weekdays,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type decisionBody struct {
	Approve *bool `json:"approve" binding:"required"`
}

// DecideRequest handles POST /api/requests/:id/decision. Approval
// authority is role-gated; a decision is taken exactly once.
func (h *Handler) DecideRequest(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.store.DecideRequest(c.Request.Context(), id, *body.Approve)
	if err != nil {
		writeError(c, err)
		return
	}

	// Approved requests change the rendered schedule.
	h.invalidate("/api/labs")
	kind := notification.EventRequestRejected
	if request.State == model.StateApproved {
		kind = notification.EventRequestApproved
	}
	h.dispatch(notification.Event{
		Kind:    kind,
		UserID:  request.RequesterID,
		Message: fmt.Sprintf("request %q was %s", request.Title, request.State),
	})
	c.JSON(http.StatusOK, request)
}

// DeleteRequest handles DELETE /api/requests/:id.
func (h *Handler) DeleteRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	existing, err := h.store.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !isAdmin(c) && existing.RequesterID != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this request"})
		return
	}
	if err := h.store.DeleteRequest(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.invalidate("/api/labs")
	c.Status(http.StatusNoContent)
}

// GetOccurrences handles GET /api/requests/:id/occurrences: the dated
// occurrences of a request with their cancellation flags.
func (h *Handler) GetOccurrences(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	occurrences, err := h.store.Occurrences(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, occurrences)
}

type cancelBody struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason"`
}

// CancelOccurrence handles POST /api/requests/:id/cancellations. For
// recurring requests the weekday membership of the date is validated
// here, before the ledger runs.
func (h *Handler) CancelOccurrence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body cancelBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := callerID(c)
	if actor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
		return
	}

	request, err := h.store.GetRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if request.Kind == model.KindRecurring {
		date, err := timeslot.ParseDate(body.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		days, err := timeslot.ParseWeekdays(request.Weekdays)
		if err != nil || !days[date.Weekday()] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is not an occurrence of request %d", body.Date, id)})
			return
		}
	}

	cancellation, err := h.store.CancelOccurrence(c.Request.Context(), store.CancelParams{
		RequestID:     id,
		Date:          body.Date,
		Reason:        body.Reason,
		Actor:         actor,
		AdminOverride: isAdmin(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidate("/api/labs")
	h.dispatch(notification.Event{
		Kind:    notification.EventOccurrenceCancelled,
		UserID:  request.RequesterID,
		Message: fmt.Sprintf("class %q will not run on %s", request.Title, cancellation.Date),
	})
	c.JSON(http.StatusCreated, cancellation)
}

// ListCancellations handles GET /api/requests/:id/cancellations.
func (h *Handler) ListCancellations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cancellations, err := h.store.ListCancellations(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancellations)
}
