package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Checker reports whether a dependency is reachable
type Checker func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	mode   string
	checks map[string]Checker
}

// NewHealthHandler creates a new health handler. checks are keyed by the
// dependency name shown in the report.
func NewHealthHandler(mode string, checks map[string]Checker) *HealthHandler {
	return &HealthHandler{mode: mode, checks: checks}
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check the server and its pending loan store
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	report := fiber.Map{"api": "healthy"}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			report[name] = "unhealthy"
			healthy = false
			continue
		}
		report[name] = "healthy"
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"mode":   h.mode,
		"checks": report,
	})
}
