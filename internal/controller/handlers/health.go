package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck проверка одной зависимости
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health GET /healthz
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))

	for _, check := range h.health {
		if err := check.Check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
			checks[check.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[check.Name] = "up"
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
