package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/mw"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	cacheStore *cache.Cache
	events     *notification.WorkerPool
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cacheStore *cache.Cache, events *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:      s,
		cacheStore: cacheStore,
		events:     events,
		webpush:    webpushOptions,
	}
}

// callerID returns the verified user identity the auth collaborator put
// on the request. The core trusts it as already authenticated.
func callerID(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

// isAdmin reports whether the auth collaborator granted the caller the
// administrator role.
func isAdmin(c *gin.Context) bool {
	return c.GetHeader("X-User-Role") == "admin"
}

// dispatch queues a domain event for best-effort delivery. A nil pool
// (tests) is a no-op; dispatch never affects the response.
func (h *Handler) dispatch(ev notification.Event) {
	if h.events != nil {
		h.events.Dispatch(ev)
	}
}

// invalidate drops cached GET responses under the given URI prefixes.
func (h *Handler) invalidate(prefixes ...string) {
	if h.cacheStore == nil {
		return
	}
	for _, p := range prefixes {
		mw.Invalidate(h.cacheStore, p)
	}
}

// writeError maps the store's error taxonomy onto HTTP statuses:
// validation 400, ownership 403, not-found 404, conflict 409, state 422,
// anything unexpected 500.
func writeError(c *gin.Context, err error) {
	var validationErr *store.ValidationError
	var conflictErr *store.ConflictError
	var stateErr *store.StateError

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrNotOwner):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "conflictDate": conflictErr.Date})
	case errors.As(err, &stateErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": stateErr.Msg})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
