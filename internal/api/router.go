package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/mw"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, events *notification.WorkerPool, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	handler := NewHandler(s, cacheStore, events, webpushOptions)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/reservations", handler.CreateReservation)
		api.GET("/reservations", caching, handler.ListReservations)
		api.PUT("/reservations/:id", handler.UpdateReservation)
		api.POST("/reservations/:id/finish", handler.FinishReservation)
		api.DELETE("/reservations/:id", handler.DeleteReservation)
		api.POST("/reservations/finish-day", handler.FinishDay)

		api.POST("/requests", handler.CreateRequest)
		api.GET("/requests", handler.ListRequests)
		api.GET("/requests/:id", handler.GetRequest)
		api.PUT("/requests/:id", handler.UpdateRequest)
		api.POST("/requests/:id/decision", handler.DecideRequest)
		api.DELETE("/requests/:id", handler.DeleteRequest)
		api.GET("/requests/:id/occurrences", handler.GetOccurrences)

		api.POST("/requests/:id/cancellations", handler.CancelOccurrence)
		api.GET("/requests/:id/cancellations", handler.ListCancellations)

		api.POST("/sessions", handler.OpenSession)
		api.POST("/sessions/:id/end", handler.EndSession)

		api.GET("/labs", caching, handler.ListLabs)
		api.GET("/labs/:lab_id/schedule", caching, handler.GetSchedule)
		api.PUT("/labs/:lab_id/mode", handler.SetLabMode)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
