package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/api/transport"
	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/pkg/httpcontext"
	captureUC "github.com/fastygo/taskproof/usecase/capture"
)

type CaptureHandler struct {
	baseHandler
	uc *captureUC.UseCase
}

func NewCaptureHandler(uc *captureUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Take a photo
// @Tags capture
// @Router /api/v1/capture [post]
func (h *CaptureHandler) Capture(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CaptureRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	photo, err := h.uc.Capture(stdCtx, userID, domain.CaptureMode(req.Mode), req.TaskID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CaptureResponse{Photo: photo})
}

// @Summary Confirm a photo and get the next screen
// @Tags capture
// @Router /api/v1/capture/confirm [post]
func (h *CaptureHandler) Confirm(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ConfirmCaptureRequest
	if !h.decode(ctx, &req) {
		return
	}
	mode := domain.CaptureMode(req.Mode)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.Confirm(stdCtx, userID, mode, req.TaskID, domain.Photo{URI: req.URI, Mode: mode})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, res)
}
