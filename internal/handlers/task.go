package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raychrisgdp/taskgenie/internal/dto"
	apierrors "github.com/raychrisgdp/taskgenie/internal/errors"
	"github.com/raychrisgdp/taskgenie/internal/models"
	"github.com/raychrisgdp/taskgenie/internal/services"
)

const (
	defaultListLimit  = 50
	defaultListOffset = 0
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// respondError maps service errors onto the API error taxonomy: not-found
// and validation errors are expected and get structured 4xx responses,
// anything else is a server-side failure.
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	var notFound *services.TaskNotFoundError
	switch {
	case errors.As(err, &notFound):
		apierrors.NotFound(c, notFound.Error())
	case services.IsValidationError(err):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		slog.Error("request failed", "error", err, "path", c.FullPath())
		apierrors.InternalError(c, "")
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "invalid request body")
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListTasks handles GET /tasks with optional status/priority/due filters and
// limit/offset pagination.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{
		Limit:  defaultListLimit,
		Offset: defaultListOffset,
	}

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}
	if v := c.Query("due_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.UnprocessableEntity(c, "due_before must be an RFC 3339 timestamp")
			return
		}
		t = t.UTC()
		input.DueBefore = &t
	}
	if v := c.Query("due_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.UnprocessableEntity(c, "due_after must be an RFC 3339 timestamp")
			return
		}
		t = t.UTC()
		input.DueAfter = &t
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			apierrors.UnprocessableEntity(c, "limit must be an integer")
			return
		}
		input.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			apierrors.UnprocessableEntity(c, "offset must be an integer")
			return
		}
		input.Offset = offset
	}

	resp, err := h.service.ListTasks(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTask handles GET /tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/:id with a partial-update document.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var doc dto.TaskUpdate
	if err := c.ShouldBindJSON(&doc); err != nil {
		apierrors.UnprocessableEntity(c, "invalid request body")
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.service.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateAttachment handles POST /tasks/:id/attachments.
func (h *TaskHandler) CreateAttachment(c *gin.Context) {
	var req dto.AttachmentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "invalid request body")
		return
	}

	attachment, err := h.service.AddAttachment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// ListAttachments handles GET /tasks/:id/attachments.
func (h *TaskHandler) ListAttachments(c *gin.Context) {
	attachments, err := h.service.ListAttachments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}
