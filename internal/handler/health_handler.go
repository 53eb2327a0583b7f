package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/studygroups-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthCheck is one dependency checked by /health. A failing critical check
// turns the whole response into 503; others only mark it degraded.
type HealthCheck struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
	log    zerolog.Logger
}

func NewHealthHandler(log zerolog.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log.With().Str("component", "health_handler").Logger(),
	}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))

	for _, chk := range h.checks {
		if err := chk.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", chk.Name).Msg("Health check failed")
			deps[chk.Name] = "down"
			if chk.Critical {
				status = "down"
				code = http.StatusServiceUnavailable
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		deps[chk.Name] = "up"
	}

	if code != http.StatusOK {
		response.FailWithData(c, code, response.ErrUnavailable, gin.H{"status": status, "dependencies": deps})
		return
	}

	response.Success(c, code, gin.H{"status": status, "dependencies": deps})
}
