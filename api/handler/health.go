package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/api/transport"
	"github.com/fastygo/taskproof/internal/infrastructure/monitor"
	"github.com/fastygo/taskproof/pkg/httpcontext"
)

// StatusSource reports dependency health.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check answers 200 while writes can land somewhere, directly or in the
// offline buffer, and 503 otherwise.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	resp := transport.HealthResponse{
		Status:     "ok",
		PostgreSQL: status.PostgreSQL,
		Redis:      status.Redis,
		Buffer:     status.Buffer,
		Pending:    status.BufferSize,
		CheckedAt:  status.LastCheck.UTC(),
	}
	if !status.PostgreSQL {
		resp.Degraded = append(resp.Degraded, "postgresql")
	}
	if !status.Redis {
		resp.Degraded = append(resp.Degraded, "redis")
	}
	if len(resp.Degraded) > 0 {
		resp.Status = "degraded"
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, resp)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "task storage unreachable", resp))
}
