package dto

import (
	"time"

	"github.com/raychrisgdp/taskgenie/internal/models"
)

// TaskCreate is the request body for creating a task. Status and priority
// default to pending/medium when omitted.
type TaskCreate struct {
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Eta         *time.Time          `json:"eta"`
	Tags        []string            `json:"tags"`
	Metadata    map[string]any      `json:"metadata"`
}

// TaskUpdate is a partial-update document. Every field distinguishes
// "absent" from "explicitly null": absent fields are untouched, null clears
// the nullable ones. Null title, status, or priority is a validation error,
// never a silent no-op.
type TaskUpdate struct {
	Title       Optional[string]              `json:"title"`
	Description Optional[string]              `json:"description"`
	Status      Optional[models.TaskStatus]   `json:"status"`
	Priority    Optional[models.TaskPriority] `json:"priority"`
	Eta         Optional[time.Time]           `json:"eta"`
	Tags        Optional[[]string]            `json:"tags"`
	Metadata    Optional[map[string]any]      `json:"metadata"`
}

// Empty reports whether no field at all was supplied.
func (u *TaskUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Status.Set &&
		!u.Priority.Set && !u.Eta.Set && !u.Tags.Set && !u.Metadata.Set
}

// AttachmentCreate is the request body for attaching an external reference
// to a task.
type AttachmentCreate struct {
	Type      models.AttachmentType `json:"type"`
	Reference string                `json:"reference"`
	Title     *string               `json:"title"`
	Content   *string               `json:"content"`
	Metadata  map[string]any        `json:"metadata"`
}

// AttachmentResponse represents an attachment in API responses.
type AttachmentResponse struct {
	ID        string                `json:"id"`
	TaskID    string                `json:"task_id"`
	Type      models.AttachmentType `json:"type"`
	Reference string                `json:"reference"`
	Title     *string               `json:"title"`
	Content   *string               `json:"content"`
	Metadata  map[string]any        `json:"metadata"`
	CreatedAt time.Time             `json:"created_at"`
}

// TaskResponse represents a task in API responses. Attachments is always a
// list, empty when none are loaded.
type TaskResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    models.TaskPriority  `json:"priority"`
	Eta         *time.Time           `json:"eta"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Tags        []string             `json:"tags"`
	Metadata    map[string]any       `json:"metadata"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// TaskListResponse is a paginated task list. Page is derived from the
// caller's offset by floor division; PageSize echoes the requested limit.
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Conversion functions

// ToAttachmentResponse converts an Attachment model to AttachmentResponse.
func ToAttachmentResponse(a models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		TaskID:    a.TaskID,
		Type:      a.Type,
		Reference: a.Reference,
		Title:     a.Title,
		Content:   a.Content,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

// ToTaskResponse converts a Task model to TaskResponse.
func ToTaskResponse(task models.Task) TaskResponse {
	attachments := make([]AttachmentResponse, 0, len(task.Attachments))
	for _, a := range task.Attachments {
		attachments = append(attachments, ToAttachmentResponse(a))
	}

	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Eta:         task.Eta,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Tags:        task.Tags,
		Metadata:    task.Metadata,
		Attachments: attachments,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse.
func ToTaskListResponse(tasks []models.Task, total int64, limit, offset int) TaskListResponse {
	items := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, ToTaskResponse(task))
	}

	return TaskListResponse{
		Tasks:    items,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	}
}
