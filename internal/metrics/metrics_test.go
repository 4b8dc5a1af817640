package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRoomOperation(t *testing.T) {
	before := testutil.ToFloat64(roomOperations.WithLabelValues("create", ResultError))
	ObserveRoomOperation("create", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(roomOperations.WithLabelValues("create", ResultError)))

	before = testutil.ToFloat64(roomOperations.WithLabelValues("create", ResultSuccess))
	ObserveRoomOperation("create", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(roomOperations.WithLabelValues("create", ResultSuccess)))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/42", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration, "ward_rooms_http_request_duration_seconds"))
}
