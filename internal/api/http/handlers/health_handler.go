package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/observability"
	"github.com/hubly/helpdesk/internal/persistence"
)

// HealthHandler serves liveness and readiness probes plus a request
// counter snapshot for diagnostics.
type HealthHandler struct {
	db      *persistence.Postgres
	cache   *persistence.Redis
	metrics *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(db *persistence.Postgres, cache *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, metrics: metrics}
}

// Live GET /health/live — process is up.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready — dependencies are reachable. Redis is
// reported but not required since the settings cache degrades
// gracefully without it.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.db == nil || h.db.PoolHandle() == nil {
		checks["postgres"] = "not configured"
		healthy = false
	} else if err := h.db.PoolHandle().Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.cache.Ping(c.Context()); err != nil {
		checks["redis"] = err.Error()
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status": checks,
		"ready":  healthy,
	})
}

// Metrics GET /health/metrics — in-memory request/error counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"requests": requests,
		"errors":   errs,
	})
}
