package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	. "taskapi/internal/adapter/http/helper"
	. "taskapi/internal/adapter/http/validation"
	"taskapi/internal/core/domain"
	"taskapi/internal/core/model/request"
	"taskapi/internal/core/model/response"
	"taskapi/internal/core/port"
	"taskapi/internal/core/util"
	"taskapi/internal/shared"
	. "taskapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TaskHandler struct {
	svc    port.TaskService
	Logger *shared.AppLogger
}

func NewTaskHandler(svc port.TaskService, logger *shared.AppLogger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.CreateTaskRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendFieldError(c, bindErrorField(err), "invalid value")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	dueDate, err := util.ParseDateTime(*params.DueDate)

	if err != nil {
		SendFieldError(c, "due_date", err.Error())
		return
	}

	task := domain.Task{
		Title:       *params.Title,
		Description: params.Description,
		Priority:    *params.Priority,
		DueDate:     dueDate,
	}

	task, err = t.svc.Create(ctx, task)

	if err != nil {
		t.logError(c, "Failed to create task", err)
		SendInternalError(c, "Error creating task")
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) ListTasks(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTasks"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	filter, ok := t.parseListFilter(c)

	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("pagination.skip", filter.Skip),
		attribute.Int("pagination.limit", filter.Limit),
		attribute.String("filter.search", filter.Search),
	)

	tasks, err := t.svc.List(ctx, filter)

	if err != nil {
		AddSpanError(span, err)
		t.logError(c, "Failed to list tasks", err)
		SendInternalError(c, "Error listing tasks")
		return
	}

	span.SetAttributes(attribute.Int("http.status_code", http.StatusOK))

	c.JSON(http.StatusOK, response.NewTaskListResponse(tasks))
}

func (t *TaskHandler) GetTask(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	task, err := t.svc.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			SendNotFoundError(c, "Task not found")
			return
		}

		t.logError(c, "Failed to get task", err)
		SendInternalError(c, "Error getting task")
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	var params request.UpdateTaskRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendFieldError(c, bindErrorField(err), "invalid value")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	patch := domain.TaskPatch{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Completed:   params.Completed,
	}

	if params.DueDate != nil {
		dueDate, err := util.ParseDateTime(*params.DueDate)

		if err != nil {
			SendFieldError(c, "due_date", err.Error())
			return
		}

		patch.DueDate = &dueDate
	}

	task, err := t.svc.Update(ctx, id, patch)

	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			SendNotFoundError(c, "Task not found")
			return
		}

		t.logError(c, "Failed to update task", err)
		SendInternalError(c, "Error updating task")
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	err := t.svc.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			SendNotFoundError(c, "Task not found")
			return
		}

		t.logError(c, "Failed to delete task", err)
		SendInternalError(c, "Error deleting task")
		return
	}

	c.JSON(http.StatusOK, response.MessageResponse{Message: "Task deleted successfully"})
}

// parseListFilter reads query params, rejecting malformed values before any
// repository call. Limit capping happens in the service.
func (t *TaskHandler) parseListFilter(c *gin.Context) (domain.TaskFilter, bool) {
	filter := domain.TaskFilter{
		Search: c.Query("search"),
		Skip:   0,
		Limit:  10,
	}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)

		if err != nil {
			SendFieldError(c, "completed", "must be a boolean")
			return domain.TaskFilter{}, false
		}

		filter.Completed = &completed
	}

	if raw := c.Query("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)

		if err != nil {
			SendFieldError(c, "priority", "must be an integer")
			return domain.TaskFilter{}, false
		}

		filter.Priority = &priority
	}

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)

		if err != nil || skip < 0 {
			SendFieldError(c, "skip", "must be a non-negative integer")
			return domain.TaskFilter{}, false
		}

		filter.Skip = skip
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)

		if err != nil || limit < 1 {
			SendFieldError(c, "limit", "must be a positive integer")
			return domain.TaskFilter{}, false
		}

		filter.Limit = limit
	}

	return filter, true
}

func parseTaskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendFieldError(c, "id", "must be an integer")
		return 0, false
	}

	return id, true
}

// bindErrorField extracts the offending field from a JSON decode error, so
// type mismatches surface as per-field validation failures.
func bindErrorField(err error) string {
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}

	return "body"
}

func (t *TaskHandler) logError(c *gin.Context, msg string, err error) {
	if t.Logger == nil {
		return
	}

	t.Logger.Logger.Ctx(c.Request.Context()).Error(msg,
		zap.Error(err),
		zap.String("path", c.FullPath()),
	)
}
