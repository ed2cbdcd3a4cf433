package repository

import (
	"context"
	"time"

	"github.com/raychrisgdp/taskgenie/internal/models"
)

// TaskRepository defines the interface for task data access. Mutating
// operations are atomic: multi-row changes run inside one transaction and
// roll back together on failure or context cancellation.
type TaskRepository interface {
	// Create inserts a task together with its scheduled notifications.
	Create(ctx context.Context, task *models.Task, notifications []models.Notification) error

	// FindByID finds a task by ID with optional preloading.
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, plus the total
	// count under the same filters.
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update persists task field changes.
	Update(ctx context.Context, task *models.Task) error

	// UpdateWithNotifications persists task field changes and replaces the
	// task's still-pending notifications in the same transaction.
	UpdateWithNotifications(ctx context.Context, task *models.Task, pending []models.Notification) error

	// Delete removes the task and all owned attachments and notifications.
	Delete(ctx context.Context, id string) error

	// CreateAttachment inserts an attachment for an existing task.
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error

	// ListAttachments returns all attachments of a task, oldest first.
	ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error)

	// ListNotifications returns all notifications of a task, soonest first.
	ListNotifications(ctx context.Context, taskID string) ([]models.Notification, error)
}

// TaskFilter holds filtering and paging options for listing tasks. All
// supplied filters are ANDed; the due bounds are inclusive and never match a
// task without an eta.
type TaskFilter struct {
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	DueBefore *time.Time
	DueAfter  *time.Time
	Limit     int
	Offset    int
}
