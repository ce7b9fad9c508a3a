package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})
	return r
}

func do(r http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerAuth(t *testing.T) {
	r := newRouter(BearerAuth(AuthConfig{TokenAPI: "secret"}))

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"sem header", "/x", "", http.StatusUnauthorized},
		{"formato inválido", "/x", "Token secret", http.StatusUnauthorized},
		{"token errado", "/x", "Bearer nope", http.StatusUnauthorized},
		{"token certo", "/x", "Bearer secret", http.StatusOK},
		{"bearer minúsculo", "/x", "bearer secret", http.StatusOK},
		{"query não aceita por padrão", "/x?token=secret", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			assert.Equal(t, tt.want, do(r, tt.target, headers).Code)
		})
	}
}

func TestBearerAuthQueryToken(t *testing.T) {
	r := newRouter(BearerAuth(AuthConfig{TokenAPI: "secret", AllowQueryToken: true}))
	assert.Equal(t, http.StatusOK, do(r, "/x?token=secret", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/x?token=bad", nil).Code)
}

func TestBearerAuthDisabledWithoutToken(t *testing.T) {
	r := newRouter(BearerAuth(AuthConfig{}))
	assert.Equal(t, http.StatusOK, do(r, "/x", nil).Code)
}

func TestRequestIDPropagation(t *testing.T) {
	r := newRouter(RequestID())

	w := do(r, "/x", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = do(r, "/x", nil)
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 8)
	assert.Equal(t, generated, w.Body.String())
}

func TestMetricsMiddlewareTracksEndpoint(t *testing.T) {
	r := newRouter(MetricsMiddleware())
	before := metrics.Get().Snapshot().Requests.Total

	do(r, "/x", nil)

	snap := metrics.Get().Snapshot()
	assert.Equal(t, before+1, snap.Requests.Total)
	assert.Contains(t, snap.Endpoints, "GET /x")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "alice", SanitizeQuery("  ali\x00ce\n "))
	assert.Len(t, []rune(SanitizeQuery(strings.Repeat("é", 200))), MaxQueryLength)
	assert.Equal(t, "90123-ab_c", SanitizeID(" 90123-ab_c; "))
	assert.True(t, ValidateID("9012"))
	assert.False(t, ValidateID(""))
	assert.Equal(t, []string{"done", "in review"}, SanitizeStatuses([]string{" done", "", "in review\t"}))
}
