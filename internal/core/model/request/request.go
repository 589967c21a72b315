package request

// CreateTaskRequest is the POST /tasks/ payload. Pointer fields distinguish
// "absent" from zero values so missing required fields fail validation
// instead of defaulting.
type CreateTaskRequest struct {
	Title       *string `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Priority    *int    `json:"priority" validate:"required,min=1,max=3"`
	DueDate     *string `json:"due_date" validate:"required"`
}

// UpdateTaskRequest is the PUT /tasks/:id/ payload. Every field is optional;
// absent fields leave the stored value untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Priority    *int    `json:"priority" validate:"omitnil,min=1,max=3"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

// ListTasksQuery carries the GET /tasks/ query params after parsing.
type ListTasksQuery struct {
	Completed *bool
	Priority  *int `validate:"omitempty,min=1,max=3"`
	Search    string
	Skip      int `validate:"min=0"`
	Limit     int `validate:"min=1,max=100"`
}
