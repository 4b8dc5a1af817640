package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/weiawesome/ward-rooms/pkg/jwt"
)

func newRouter(verifier *pkgjwt.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", NewAuthMiddleware(verifier).RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth_Disabled(t *testing.T) {
	rec := serve(newRouter(nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	verifier, err := pkgjwt.NewVerifier("secret", "")
	require.NoError(t, err)
	r := newRouter(verifier)

	valid, err := verifier.Sign("user-9", "nurse", nil, time.Minute)
	require.NoError(t, err)
	expired, err := verifier.Sign("user-9", "nurse", nil, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantBody: "invalid authorization format"},
		{name: "bad token", header: BearerPrefix + "nope", wantCode: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "expired token", header: BearerPrefix + expired, wantCode: http.StatusUnauthorized, wantBody: "token has expired"},
		{name: "valid token", header: BearerPrefix + valid, wantCode: http.StatusOK, wantBody: "user-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.header)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
