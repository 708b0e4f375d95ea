package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"

	// ContextKeyAPIKeyName имя клиента, прошедшего проверку ключа
	ContextKeyAPIKeyName = "api_key_name"
)

// APIKey проверка ключа для управляющего API ссылок
type APIKey struct {
	keys map[string]string // ключ -> имя клиента
}

// NewAPIKey создаёт проверку. Пустой набор ключей отключает аутентификацию.
func NewAPIKey(keys map[string]string) *APIKey {
	return &APIKey{keys: keys}
}

// Enabled есть ли хотя бы один ключ
func (ak *APIKey) Enabled() bool {
	return len(ak.keys) > 0
}

// Middleware ключ берётся из X-API-Key или Authorization: Bearer
func (ak *APIKey) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ak.Enabled() {
			c.Next()
			return
		}

		key := extractAPIKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_api_key",
				"message": "API key is required: pass it in X-API-Key or Authorization: Bearer",
			})
			return
		}

		name, ok := ak.lookup(key)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_api_key",
				"message": "Invalid API key",
			})
			return
		}

		c.Set(ContextKeyAPIKeyName, name)
		c.Next()
	}
}

// lookup сравнивает за постоянное время со всеми ключами
func (ak *APIKey) lookup(key string) (string, bool) {
	var (
		name  string
		found bool
	)
	for valid, n := range ak.keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			name, found = n, true
		}
	}
	return name, found
}

func extractAPIKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(apiKeyHeader)); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// APIKeyName имя клиента из контекста, если ключ проверялся
func APIKeyName(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextKeyAPIKeyName)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}
