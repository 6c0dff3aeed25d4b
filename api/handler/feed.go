package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/api/transport"
	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/detail"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/progress"
	"github.com/fastygo/taskproof/pkg/httpcontext"
	feedUC "github.com/fastygo/taskproof/usecase/feed"
)

type FeedHandler struct {
	baseHandler
	uc       *feedUC.UseCase
	progress ProgressOptions
}

func NewFeedHandler(uc *feedUC.UseCase, opts ProgressOptions, adapter *httpcontext.Adapter, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		progress:    opts.withDefaults(),
	}
}

// @Summary Main screen feed
// @Tags feed
// @Router /api/v1/feed [get]
func (h *FeedHandler) GetFeed(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	feed, err := h.uc.Feed(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	now := h.progress.Now()
	stories := make([]transport.StoryView, 0, len(feed.Stories))
	for _, item := range feed.Stories {
		stories = append(stories, transport.StoryView{
			StoryItem:   item,
			StatusColor: progress.StoryStatusColor(item),
			Progress:    progress.Compute(item.Task.Task, now, h.progress.Radius),
		})
	}
	h.respondSuccess(ctx, http.StatusOK, transport.FeedResponse{
		Stories:       stories,
		MyOngoing:     feed.MyOngoing,
		FriendOngoing: feed.FriendOngoing,
	})
}

// @Summary Mark a friend's task viewed
// @Tags feed
// @Router /api/v1/feed/{id}/viewed [post]
func (h *FeedHandler) MarkViewed(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.MarkViewed(stdCtx, userID, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Resolve a released swipe on the detail screen
// @Tags feed
// @Router /api/v1/feed/swipe [post]
func (h *FeedHandler) Swipe(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.SwipeRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.Sequence(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	index := -1
	for i := range items {
		if items[i].Task.ID == req.TaskID {
			index = i
			break
		}
	}
	if index < 0 {
		h.respondError(ctx, stdCtx, domain.ErrTaskNotFound)
		return
	}

	next, dir := detail.Resolve(index, len(items), req.Translation)
	resp := transport.SwipeResponse{Direction: dir.String()}
	if dir != detail.DirectionNone {
		route := navigation.DetailRoute(items[next])
		resp.Navigated = true
		resp.Route = &route
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}
