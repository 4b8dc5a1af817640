package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware_RequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "room-service", Output: &buf})

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/rooms/:id", func(c *gin.Context) {
		c.Set(FieldUserID, "user-3")
		l := Ctx(c.Request.Context())
		l.Info().Str(FieldRoomID, c.Param("id")).Msg("handled")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/rooms/abc", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var handled, completed map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &handled))
	require.NoError(t, json.Unmarshal(lines[1], &completed))

	assert.Equal(t, "req-123", handled[FieldRequestID])
	assert.Equal(t, "abc", handled[FieldRoomID])
	assert.Equal(t, "room-service", handled[FieldService])

	assert.Equal(t, "request completed", completed["message"])
	assert.Equal(t, float64(http.StatusNoContent), completed[FieldStatus])
	assert.Equal(t, "user-3", completed[FieldUserID])
}

func TestGinMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestDetached(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With().Str(FieldRequestID, "req-9").Logger()

	ctx, cancel := context.WithCancel(WithLogger(context.Background(), logger))
	cancel()

	detached := Detached(ctx)
	assert.NoError(t, detached.Err())

	l := Ctx(detached)
	l.Info().Msg("after request")
	assert.Contains(t, buf.String(), `"request_id":"req-9"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}
