package http

import (
	"log/slog"

	"taskapi/internal/adapter/http/handler"
	"taskapi/internal/core/port"
	"taskapi/internal/core/service"
	"taskapi/internal/core/telemetry"
	"taskapi/internal/shared"
)

type Container struct {
	TaskRepo    port.TaskRepository
	TaskService port.TaskService
	TaskHandler *handler.TaskHandler
}

func NewContainer(taskRepo port.TaskRepository, logger *shared.AppLogger) *Container {
	probe := telemetry.NewOTELProbe(slog.Default())

	taskSvc := service.NewTaskService(taskRepo, probe)
	taskHandler := handler.NewTaskHandler(taskSvc, logger)

	return &Container{
		TaskRepo:    taskRepo,
		TaskService: taskSvc,
		TaskHandler: taskHandler,
	}
}
