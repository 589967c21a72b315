package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"taskapi/internal/core/domain"
	"taskapi/internal/core/port"
	tel "taskapi/internal/core/telemetry"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

type TaskService struct {
	repo      port.TaskRepository
	telemetry port.Telemetry
}

func NewTaskService(repo port.TaskRepository, telemetry port.Telemetry) *TaskService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskService{repo: repo, telemetry: telemetry}
}

func (ts *TaskService) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Create", []attribute.KeyValue{
		attribute.String("task.title", task.Title),
		attribute.Int("task.priority", task.Priority),
	})
	defer span.End()

	startTime := time.Now()

	// Completion is server-assigned on creation.
	task.ID = 0
	task.Completed = false

	created, err := ts.repo.Create(ctx, task)

	if err != nil {
		slog.Error("Repository create failed", "error", err, "title", task.Title)
		ts.telemetry.RecordServiceOperation(ctx, "task", "Create", time.Since(startTime), err)
		return domain.Task{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "created", "task", itoa(created.ID), map[string]interface{}{
		"title":    created.Title,
		"priority": created.Priority,
	})
	ts.telemetry.RecordServiceOperation(ctx, "task", "Create", time.Since(startTime), nil)

	return created, nil
}

func (ts *TaskService) GetByID(ctx context.Context, id int) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "GetByID", []attribute.KeyValue{
		attribute.Int("task.id", id),
	})
	defer span.End()

	task, err := ts.repo.GetByID(ctx, id)

	if err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) {
			slog.Error("Repository get failed", "error", err, "id", id)
		}
		return domain.Task{}, err
	}

	return task, nil
}

func (ts *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "List", []attribute.KeyValue{
		attribute.Int("pagination.skip", filter.Skip),
		attribute.Int("pagination.limit", filter.Limit),
		attribute.String("filter.search", filter.Search),
	})
	defer span.End()

	if filter.Skip < 0 {
		filter.Skip = 0
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	tasks, err := ts.repo.List(ctx, filter)

	if err != nil {
		slog.Error("Repository list failed", "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("tasks.returned", len(tasks)))

	return tasks, nil
}

func (ts *TaskService) Update(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Update", []attribute.KeyValue{
		attribute.Int("task.id", id),
		attribute.Int("update.fields_count", len(patch.ToMap())),
	})
	defer span.End()

	startTime := time.Now()

	task, err := ts.repo.Update(ctx, id, patch)

	if err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) {
			slog.Error("Repository update failed", "error", err, "id", id)
		}
		ts.telemetry.RecordServiceOperation(ctx, "task", "Update", time.Since(startTime), err)
		return domain.Task{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "updated", "task", itoa(task.ID), map[string]interface{}{
		"fields": patch.ToMap(),
	})
	ts.telemetry.RecordServiceOperation(ctx, "task", "Update", time.Since(startTime), nil)

	return task, nil
}

func (ts *TaskService) Delete(ctx context.Context, id int) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Delete", []attribute.KeyValue{
		attribute.Int("task.id", id),
	})
	defer span.End()

	err := ts.repo.Delete(ctx, id)

	if err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) {
			slog.Error("Repository delete failed", "error", err, "id", id)
		}
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "task", itoa(id), nil)

	return nil
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
