package port

import (
	"context"

	"taskapi/internal/core/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, id int) (domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id int) error
}

type TaskService interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, id int) (domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id int) error
}
