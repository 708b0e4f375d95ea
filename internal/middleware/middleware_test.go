package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeiKhy/qrlink/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRateLimiter_Middleware проверяет лимит по IP
func TestRateLimiter_Middleware(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Первые 5 запросов проходят в пределах burst
	for i := 0; i < 5; i++ {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, 1, rl.Visitors())
}

// TestRateLimiter_MiddlewareWithKey проверяет лимит по кастомному ключу
func TestRateLimiter_MiddlewareWithKey(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		BurstSize:         2,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.MiddlewareWithKey(func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-User-ID", user)
		return serve(router, req).Code
	}

	assert.Equal(t, http.StatusOK, request("user1"))
	assert.Equal(t, http.StatusOK, request("user1"))
	assert.Equal(t, http.StatusTooManyRequests, request("user1"))
	assert.Equal(t, http.StatusOK, request("user2"), "другой ключ имеет свой bucket")
}

// TestRateLimiter_StopIsIdempotent проверяет повторную остановку
func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func apiKeyRouter(keys map[string]string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.NewAPIKey(keys).Middleware())
	router.GET("/test", func(c *gin.Context) {
		name, _ := middleware.APIKeyName(c)
		c.JSON(http.StatusOK, gin.H{"client": name})
	})
	return router
}

// TestAPIKey_Middleware проверяет аутентификацию по API ключу
func TestAPIKey_Middleware(t *testing.T) {
	router := apiKeyRouter(map[string]string{
		"test-key-1": "dashboard",
		"test-key-2": "ci",
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_api_key")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-Key", "invalid-key")
	w = serve(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_api_key")

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-Key", "test-key-2")
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"client":"ci"}`, w.Body.String())
}

// TestAPIKey_Middleware_BearerToken проверяет передачу ключа через Bearer токен
func TestAPIKey_Middleware_BearerToken(t *testing.T) {
	router := apiKeyRouter(map[string]string{"test-key-1": "dashboard"})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer test-key-1")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAPIKey_Middleware_QueryIgnored проверяет, что ключ в query не принимается
func TestAPIKey_Middleware_QueryIgnored(t *testing.T) {
	router := apiKeyRouter(map[string]string{"test-key-1": "dashboard"})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test?api_key=test-key-1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAPIKey_Middleware_Disabled проверяет, что без ключей проверка выключена
func TestAPIKey_Middleware_Disabled(t *testing.T) {
	router := apiKeyRouter(nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRequestLogger проверяет уровень лога по статусу ответа
func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(middleware.RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/missing", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, zap.ErrorLevel, entries[2].Level)
		assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
	}
}

// TestTracing проверяет, что middleware прокидывает контекст и не ломает ответ
func TestTracing(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Tracing("qr-redirect"))
	router.GET("/r/:code", func(c *gin.Context) {
		assert.NotNil(t, c.Request.Context())
		c.Status(http.StatusMovedPermanently)
	})

	req := httptest.NewRequest(http.MethodGet, "/r/abc", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	w := serve(router, req)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
}
