package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func TestCacheServesSecondRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	hits := 0
	r := gin.New()
	r.GET("/api/labs", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/labs", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"hits":1}`, w.Body.String())
	}
	assert.Equal(t, 1, hits)
}

func TestInvalidateDropsByPrefix(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	store.Set("/api/labs", cachedResponse{}, time.Minute)
	store.Set("/api/labs/1/schedule?from=a&to=b", cachedResponse{}, time.Minute)
	store.Set("/api/reservations", cachedResponse{}, time.Minute)

	Invalidate(store, "/api/labs")

	_, found := store.Get("/api/labs")
	assert.False(t, found)
	_, found = store.Get("/api/labs/1/schedule?from=a&to=b")
	assert.False(t, found)
	_, found = store.Get("/api/reservations")
	assert.True(t, found)
}
