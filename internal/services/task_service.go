package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raychrisgdp/taskgenie/internal/dto"
	"github.com/raychrisgdp/taskgenie/internal/models"
	"github.com/raychrisgdp/taskgenie/internal/repository"
)

const maxTitleLength = 255

var (
	ErrTitleRequired         = errors.New("title is required")
	ErrTitleNull             = errors.New("title cannot be null")
	ErrTitleTooLong          = errors.New("title must be at most 255 characters")
	ErrStatusNull            = errors.New("status cannot be null")
	ErrPriorityNull          = errors.New("priority cannot be null")
	ErrInvalidStatus         = errors.New("invalid status value")
	ErrInvalidPriority       = errors.New("invalid priority value")
	ErrInvalidLimit          = errors.New("limit must be at least 1")
	ErrInvalidOffset         = errors.New("offset must not be negative")
	ErrInvalidAttachmentType = errors.New("invalid attachment type")
	ErrReferenceRequired     = errors.New("reference is required")
	ErrReferenceTooLong      = errors.New("reference must be at most 500 characters")
)

var validationErrors = []error{
	ErrTitleRequired, ErrTitleNull, ErrTitleTooLong,
	ErrStatusNull, ErrPriorityNull, ErrInvalidStatus, ErrInvalidPriority,
	ErrInvalidLimit, ErrInvalidOffset,
	ErrInvalidAttachmentType, ErrReferenceRequired, ErrReferenceTooLong,
}

// IsValidationError reports whether err is one of the input validation
// errors, which map to a 422 at the API boundary.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// TaskNotFoundError carries the id that was not found. It maps to a 404 with
// the TASK_NOT_FOUND code.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return "task not found: " + e.TaskID
}

// TaskService implements task CRUD, filtering, pagination, and partial-update
// semantics on top of the repository.
type TaskService struct {
	repo repository.TaskRepository

	// notificationOffsets are the lead times before a task's eta at which
	// reminder notifications are recorded.
	notificationOffsets []time.Duration

	now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo repository.TaskRepository, notificationOffsets []time.Duration) *TaskService {
	return &TaskService{
		repo:                repo,
		notificationOffsets: notificationOffsets,
		now:                 time.Now,
	}
}

// ListTasksInput represents filters and paging for listing tasks.
type ListTasksInput struct {
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	DueBefore *time.Time
	DueAfter  *time.Time
	Limit     int
	Offset    int
}

// CreateTask validates the input, assigns a fresh id, and stores the task
// together with its scheduled reminder notifications.
func (s *TaskService) CreateTask(ctx context.Context, input dto.TaskCreate) (*dto.TaskResponse, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	now := s.timestamp()
	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		Eta:         toUTC(input.Eta),
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        input.Tags,
		Metadata:    input.Metadata,
	}

	notifications := s.scheduleNotifications(task, now)

	if err := s.repo.Create(ctx, task, notifications); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	resp := dto.ToTaskResponse(*task)
	return &resp, nil
}

// GetTask returns a task with its attachments.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, taskID, "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	resp := dto.ToTaskResponse(*task)
	return &resp, nil
}

// ListTasks returns a filtered, paginated task page. The total reflects the
// full filtered count regardless of paging, and the page number is derived
// from the offset by floor division.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) (*dto.TaskListResponse, error) {
	if input.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	if input.Offset < 0 {
		return nil, ErrInvalidOffset
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	filter := repository.TaskFilter{
		Status:    input.Status,
		Priority:  input.Priority,
		DueBefore: toUTC(input.DueBefore),
		DueAfter:  toUTC(input.DueAfter),
		Limit:     input.Limit,
		Offset:    input.Offset,
	}

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	resp := dto.ToTaskListResponse(tasks, total, input.Limit, input.Offset)
	return &resp, nil
}

// UpdateTask applies a partial-update document. Only supplied fields change;
// explicit null clears the nullable fields and is rejected for title, status,
// and priority. An empty document is a no-op that does not advance
// updated_at. Changing the eta reschedules still-pending notifications.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, doc dto.TaskUpdate) (*dto.TaskResponse, error) {
	// The whole document is validated before the store is touched, so a bad
	// field never leaves a partially applied update behind.
	if doc.Title.Set {
		if doc.Title.Null {
			return nil, ErrTitleNull
		}
		if err := validateTitle(doc.Title.Value); err != nil {
			return nil, err
		}
	}
	if doc.Status.Set {
		if doc.Status.Null {
			return nil, ErrStatusNull
		}
		if !doc.Status.Value.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	if doc.Priority.Set {
		if doc.Priority.Null {
			return nil, ErrPriorityNull
		}
		if !doc.Priority.Value.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	task, err := s.repo.FindByID(ctx, taskID, "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if doc.Empty() {
		resp := dto.ToTaskResponse(*task)
		return &resp, nil
	}

	if doc.Title.Set {
		task.Title = doc.Title.Value
	}
	if doc.Description.Set {
		if doc.Description.Null {
			task.Description = nil
		} else {
			desc := doc.Description.Value
			task.Description = &desc
		}
	}
	if doc.Status.Set {
		task.Status = doc.Status.Value
	}
	if doc.Priority.Set {
		task.Priority = doc.Priority.Value
	}
	if doc.Eta.Set {
		if doc.Eta.Null {
			task.Eta = nil
		} else {
			eta := doc.Eta.Value.UTC()
			task.Eta = &eta
		}
	}
	if doc.Tags.Set {
		if doc.Tags.Null {
			task.Tags = nil
		} else {
			task.Tags = doc.Tags.Value
		}
	}
	if doc.Metadata.Set {
		if doc.Metadata.Null {
			task.Metadata = nil
		} else {
			task.Metadata = doc.Metadata.Value
		}
	}

	now := s.timestamp()
	task.UpdatedAt = now

	if doc.Eta.Set {
		pending := s.scheduleNotifications(task, now)
		err = s.repo.UpdateWithNotifications(ctx, task, pending)
	} else {
		err = s.repo.Update(ctx, task)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	resp := dto.ToTaskResponse(*task)
	return &resp, nil
}

// DeleteTask removes a task and, through the repository transaction, all of
// its attachments and notifications.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &TaskNotFoundError{TaskID: taskID}
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AddAttachment validates and stores an external reference on an existing
// task.
func (s *TaskService) AddAttachment(ctx context.Context, taskID string, input dto.AttachmentCreate) (*dto.AttachmentResponse, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidAttachmentType
	}
	if input.Reference == "" {
		return nil, ErrReferenceRequired
	}
	if utf8.RuneCountInString(input.Reference) > 500 {
		return nil, ErrReferenceTooLong
	}

	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	attachment := &models.Attachment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Type:      input.Type,
		Reference: input.Reference,
		Title:     input.Title,
		Content:   input.Content,
		Metadata:  input.Metadata,
		CreatedAt: s.timestamp(),
	}

	if err := s.repo.CreateAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	resp := dto.ToAttachmentResponse(*attachment)
	return &resp, nil
}

// ListAttachments returns a task's attachments.
func (s *TaskService) ListAttachments(ctx context.Context, taskID string) ([]dto.AttachmentResponse, error) {
	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	attachments, err := s.repo.ListAttachments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	resps := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		resps = append(resps, dto.ToAttachmentResponse(a))
	}
	return resps, nil
}

// scheduleNotifications builds pending reminder notifications for a task's
// eta at each configured lead offset. Offsets already in the past are
// skipped; a task without an eta gets none.
func (s *TaskService) scheduleNotifications(task *models.Task, now time.Time) []models.Notification {
	if task.Eta == nil {
		return nil
	}

	notifications := make([]models.Notification, 0, len(s.notificationOffsets))
	for _, offset := range s.notificationOffsets {
		at := task.Eta.Add(-offset)
		if !at.After(now) {
			continue
		}
		notifications = append(notifications, models.Notification{
			ID:          uuid.NewString(),
			TaskID:      task.ID,
			Type:        "reminder",
			ScheduledAt: at,
			Status:      models.NotificationStatusPending,
		})
	}
	return notifications
}

// timestamp returns the current UTC time truncated to microseconds, so the
// value survives a round-trip through the store unchanged.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// toUTC normalizes an optional caller-supplied time to UTC. The sqlite
// driver stores timestamps as offset-preserving text, so every persisted or
// compared time must use one rendering or range comparisons break on
// non-UTC offsets.
func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
