package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-notes/internal/app/accounts"
	apperrors "media-notes/internal/app/errors"
)

const testSecret = "middleware-test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), StructuredLogging(zap.NewNop()), ErrorHandler(zap.NewNop()))
	return router
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBearerAuth(t *testing.T) {
	router := newRouter()
	router.GET("/me", BearerAuth(testSecret), func(c *gin.Context) {
		id, ok := AccountID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"account_id": id})
	})

	valid, err := accounts.IssueToken(testSecret, 7, time.Hour)
	require.NoError(t, err)
	forged, err := accounts.IssueToken("other-secret", 7, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			if tt.status == http.StatusOK {
				assert.Equal(t, float64(7), body["account_id"])
			} else {
				assert.Equal(t, "unauthorized", body["kind"])
				assert.NotEmpty(t, body["request_id"])
			}
		})
	}
}

func TestWebhookSecret(t *testing.T) {
	router := newRouter()
	router.POST("/hook", WebhookSecret("hook-secret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/disabled", WebhookSecret(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(path, secret string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Webhook-Secret", secret)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("/hook", "hook-secret"))
	assert.Equal(t, http.StatusForbidden, send("/hook", "guess"))
	assert.Equal(t, http.StatusServiceUnavailable, send("/disabled", ""))
}

func TestHandleErrorMapsAppKinds(t *testing.T) {
	router := newRouter()
	router.GET("/credit", func(c *gin.Context) {
		HandleError(c, apperrors.NewKind(apperrors.KindInsufficientCredit, "account 1 has no credits left"))
	})
	router.GET("/db", func(c *gin.Context) {
		HandleError(c, fmt.Errorf("dial tcp: connection refused"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/credit", nil))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_credit", decode(t, rec)["code"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/db", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	router := newRouter()
	router.GET("/panic", func(c *gin.Context) { panic("nil map") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decode(t, rec)["kind"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newRouter()
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter()
	router.Use(CORS(DefaultCORSConfig()))
	router.OPTIONS("/api/v1/jobs", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "https://notes.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

type languageForm struct {
	Output string `form:"output_language" binding:"omitempty,oneof=pl en de fr es"`
}

func TestValidateQueryReportsFields(t *testing.T) {
	router := newRouter()
	router.GET("/q", func(c *gin.Context) {
		var q languageForm
		if err := ValidateQuery(c, &q); err != nil {
			HandleError(c, err)
			return
		}
		c.String(http.StatusOK, q.Output)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/q?output_language=it", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec)["details"].(map[string]interface{})
	assert.Contains(t, details["output"], "pl en de fr es")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/q?output_language=de", nil))
	assert.Equal(t, "de", rec.Body.String())
}
