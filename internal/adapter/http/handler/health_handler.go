package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
	rs     *shared.Responder
	logger *logger.Logger
}

func NewHealthHandler(checks map[string]Pinger, rs *shared.Responder, log *logger.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, rs: rs, logger: log.Named("HealthHandler")}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthz pings every dependency and answers 503 if one fails.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}
	h.rs.JSON(w, status, resp)
}
