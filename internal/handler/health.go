package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeiKhy/qrlink/internal/service"
	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger зависимость, которую проверяет /readyz
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks   map[string]Pinger
	recorder service.ScanRecorder
}

func NewHealthHandler(checks map[string]Pinger, recorder service.ScanRecorder) *HealthHandler {
	return &HealthHandler{checks: checks, recorder: recorder}
}

// Health GET /api/v1/health, живость процесса без обращения к зависимостям
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

// Ready GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{"status": "ok", "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	if h.recorder != nil {
		body["scan_queue"] = h.recorder.Stats()
	}

	c.JSON(status, body)
}
