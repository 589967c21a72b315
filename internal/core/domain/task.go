package domain

import (
	"errors"
	"time"
)

const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// ErrTaskNotFound is the absence marker: repositories return it when no row
// matches the requested id, handlers map it to 404.
var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID          int
	Title       string `validate:"required,min=1,max=255"`
	Description *string
	Priority    int       `validate:"min=1,max=3"`
	DueDate     time.Time `validate:"required"`
	Completed   bool
}

func (t *Task) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"due_date":    t.DueDate,
		"completed":   t.Completed,
	}
}

func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate.Before(now)
}

// TaskPatch carries a partial update. Nil fields were absent from the request
// and must leave the stored value untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *int
	DueDate     *time.Time
	Completed   *bool
}

func (p *TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.DueDate == nil &&
		p.Completed == nil
}

// ToMap returns only the fields present in the patch, keyed by column name.
func (p *TaskPatch) ToMap() map[string]interface{} {
	fields := map[string]interface{}{}

	if p.Title != nil {
		fields["title"] = *p.Title
	}

	if p.Description != nil {
		fields["description"] = *p.Description
	}

	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}

	if p.DueDate != nil {
		fields["due_date"] = *p.DueDate
	}

	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}

	return fields
}

// Apply merges the patch into a task, field by field.
func (p *TaskPatch) Apply(task Task) Task {
	if p.Title != nil {
		task.Title = *p.Title
	}

	if p.Description != nil {
		task.Description = p.Description
	}

	if p.Priority != nil {
		task.Priority = *p.Priority
	}

	if p.DueDate != nil {
		task.DueDate = *p.DueDate
	}

	if p.Completed != nil {
		task.Completed = *p.Completed
	}

	return task
}

// TaskFilter narrows a listing. Nil pointers mean the predicate is not
// applied; predicates combine with AND. Search matches a case-insensitive
// substring of title or description.
type TaskFilter struct {
	Completed *bool
	Priority  *int
	Search    string
	Skip      int
	Limit     int
}
