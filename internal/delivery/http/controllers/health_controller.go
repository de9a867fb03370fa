package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"devevents/internal/delivery/http/helpers"
)

const healthCheckTimeout = 3 * time.Second

// ReadinessCheck reports whether the service can reach its database.
type ReadinessCheck func(ctx context.Context) error

// HealthResponse is the body of a successful health check.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type HealthController struct {
	Logger *slog.Logger
	Check  ReadinessCheck
}

func NewHealthController(logger *slog.Logger, check ReadinessCheck) *HealthController {
	return &HealthController{Logger: logger, Check: check}
}

// Healthz godoc
// @Summary Readiness probe
// @Description Ensures the shared database connection is established.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /healthz [get]
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	if err := c.Check(ctx); err != nil {
		helpers.WriteServiceError(w, r.WithContext(ctx), c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}
