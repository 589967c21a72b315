package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"taskapi/internal/adapter/database/sqlite"
	"taskapi/internal/core/domain"
	"taskapi/internal/core/port"
	tel "taskapi/internal/core/telemetry"
)

type TaskRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

const taskColumns = "id, title, description, priority, due_date, completed"

func scanTask(row sq.RowScanner) (domain.Task, error) {
	var task domain.Task
	var description sql.NullString

	err := row.Scan(&task.ID, &task.Title, &description, &task.Priority, &task.DueDate, &task.Completed)

	if err != nil {
		return domain.Task{}, err
	}

	if description.Valid {
		task.Description = &description.String
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "task", []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("task.title", task.Title),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "Create", "task")

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "priority", "due_date", "completed").
		Values(task.Title, task.Description, task.Priority, task.DueDate, task.Completed).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "task", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		op.End(err)
		slog.Error("Insert failed", "error", err, "title", task.Title)
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		op.End(err)
		return domain.Task{}, err
	}

	saved, err := tr.GetByID(ctx, int(id))

	if err != nil {
		op.End(err)
		slog.Error("GetByID failed after insert", "error", err, "id", id)
		return domain.Task{}, err
	}

	span.SetAttributes(attribute.Int("task.id", saved.ID))
	op.End(nil)

	return saved, nil
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int) (domain.Task, error) {
	query, args, err := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRowContext(ctx, query, args...))

	if err == sql.ErrNoRows {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if err != nil {
		slog.Error("Error getting task by id", "error", err, "id", id)
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "List", "task", []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int("pagination.skip", filter.Skip),
		attribute.Int("pagination.limit", filter.Limit),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "List", "task")

	builder := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		OrderBy("id ASC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit))

	if filter.Completed != nil {
		builder = builder.Where(sq.Eq{"completed": *filter.Completed})
	}

	if filter.Priority != nil {
		builder = builder.Where(sq.Eq{"priority": *filter.Priority})
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"

		builder = builder.Where(sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(description)": pattern},
		})
	}

	query, args, err := builder.ToSql()

	if err != nil {
		op.End(err)
		return nil, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "List", "task", query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		op.End(err)
		slog.Error("Error fetching tasks", "error", err)
		return nil, err
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			op.End(err)
			return nil, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		op.End(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(tasks)))
	op.End(nil)

	return tasks, nil
}

func (tr *TaskRepository) Update(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "task", []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int("task.id", id),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "Update", "task")

	current, err := tr.GetByID(ctx, id)

	if err != nil {
		op.End(err)
		return domain.Task{}, err
	}

	fields := patch.ToMap()

	span.SetAttributes(attribute.Int("update.fields_count", len(fields)))

	if len(fields) == 0 {
		op.End(nil)
		return current, nil
	}

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		op.End(err)
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", "task", query, args)

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		op.End(err)
		slog.Error("Error updating task", "error", err, "id", id)
		return domain.Task{}, err
	}

	updated, err := tr.GetByID(ctx, id)

	if err != nil {
		op.End(err)
		return domain.Task{}, err
	}

	op.End(nil)

	return updated, nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id int) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "task", []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int("task.id", id),
	})
	defer span.End()

	op := tel.StartOperation(tr.telemetry, ctx, "Delete", "task")

	query, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		op.End(err)
		return err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Delete", "task", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		op.End(err)
		slog.Error("Error deleting task", "error", err, "id", id)
		return err
	}

	affected, err := result.RowsAffected()

	if err != nil {
		op.End(err)
		return err
	}

	if affected == 0 {
		op.End(domain.ErrTaskNotFound)
		return domain.ErrTaskNotFound
	}

	op.End(nil)

	return nil
}
