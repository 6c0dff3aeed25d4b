package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/api/transport"
	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/progress"
	"github.com/fastygo/taskproof/pkg/httpcontext"
	"github.com/fastygo/taskproof/repository"
	feedUC "github.com/fastygo/taskproof/usecase/feed"
	taskUC "github.com/fastygo/taskproof/usecase/task"
)

// ProgressOptions controls how snapshots are computed for responses.
type ProgressOptions struct {
	Radius float64
	Now    func() time.Time
}

func (o ProgressOptions) withDefaults() ProgressOptions {
	if o.Radius <= 0 {
		o.Radius = progress.DefaultRadius
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type TaskHandler struct {
	baseHandler
	uc       *taskUC.UseCase
	feed     *feedUC.UseCase
	progress ProgressOptions
}

func NewTaskHandler(uc *taskUC.UseCase, feed *feedUC.UseCase, opts ProgressOptions, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		feed:        feed,
		progress:    opts.withDefaults(),
	}
}

// @Summary List own tasks
// @Tags tasks
// @Param state query string false "active, completed or abandoned"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	state := repository.TaskState(ctx.QueryArgs().Peek("state"))
	switch state {
	case repository.StateAny, repository.StateActive, repository.StateCompleted, repository.StateAbandoned:
	default:
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown state", nil))
		return
	}

	filter := repository.TaskFilter{
		UserIDs: []string{userID},
		State:   state,
		Limit:   parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:  parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CreateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, userID, taskUC.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		TargetHours:   req.TargetHours,
		TargetMinutes: req.TargetMinutes,
		StartImage:    req.StartImage,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get a visible task with its progress
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	item, err := h.feed.Visible(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TaskDetailResponse{
		Item:     *item,
		Progress: progress.Compute(item.Task.Task, h.progress.Now(), h.progress.Radius),
	})
}

// @Summary Progress snapshot
// @Tags tasks
// @Router /api/v1/tasks/{id}/progress [get]
func (h *TaskHandler) GetProgress(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	item, err := h.feed.Visible(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, progress.Compute(item.Task.Task, h.progress.Now(), h.progress.Radius))
}

// @Summary Complete task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CompleteTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.CompleteTask(stdCtx, userID, pathParam(ctx, "id"), req.EndImage)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Abandon task
// @Tags tasks
// @Router /api/v1/tasks/{id}/abandon [post]
func (h *TaskHandler) AbandonTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AbandonTask(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, userID, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
