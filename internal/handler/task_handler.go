package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

// TaskHandler handles the task endpoints. Every handler expects the auth
// middleware to have stored the acting user in the context.
type TaskHandler struct {
	taskService service.TaskService
	log         *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, log: log}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Description string  `json:"description" validate:"required"`
	Priority    *string `json:"priority" enums:"high,medium,low,default"`
}

// DescriptionRequest carries a new description.
type DescriptionRequest struct {
	Description model.NullString `json:"description" swaggertype:"string"`
}

// TitleRequest carries a new title; null clears it.
type TitleRequest struct {
	Title model.NullString `json:"title" swaggertype:"string"`
}

// PriorityRequest carries a new priority.
type PriorityRequest struct {
	Priority *string `json:"priority" enums:"high,medium,low,default"`
}

// ToggleRequest must contain a completed field; its value is ignored.
type ToggleRequest struct {
	Completed *json.RawMessage `json:"completed" swaggertype:"boolean"`
}

func (h *TaskHandler) user(c echo.Context) (*model.User, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return user, nil
}

// taskID parses the :id path parameter. A non-numeric id cannot name any
// task, so it reports not found.
func taskID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, service.ErrTaskNotFound
	}
	return uint(id), nil
}

// ListAll godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TaskResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks [get]
func (h *TaskHandler) ListAll(c echo.Context) error {
	user, err := h.user(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	tasks, err := h.taskService.ListAll(c.Request().Context(), user.ID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListCompleted godoc
// @Summary List the caller's completed tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CompletedTaskResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-completed-tasks [get]
func (h *TaskHandler) ListCompleted(c echo.Context) error {
	user, err := h.user(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	tasks, err := h.taskService.ListCompleted(c.Request().Context(), user.ID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	resp := make([]CompletedTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, CompletedTaskResponse{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}
	return c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/create-task [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := h.user(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, h.log, badRequest("Missing JSON body"))
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(c, h.log, badRequest(missingFieldsMessage(err)))
	}

	task, err := h.taskService.Create(c.Request().Context(), user.ID, req.Description, req.Priority)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, newTaskResponse(task))
}

// UpdateDescription godoc
// @Summary Update a task description
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body DescriptionRequest true "New description"
// @Success 200 {object} UpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks/{id}/description [patch]
func (h *TaskHandler) UpdateDescription(c echo.Context) error {
	var req DescriptionRequest
	return h.update(c, &req, func(userID, id uint) (*model.Task, string, error) {
		task, err := h.taskService.UpdateDescription(c.Request().Context(), userID, id, req.Description)
		return task, "Task description updated", err
	})
}

// UpdateTitle godoc
// @Summary Update a task title
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body TitleRequest true "New title"
// @Success 200 {object} UpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks/{id}/title [patch]
func (h *TaskHandler) UpdateTitle(c echo.Context) error {
	var req TitleRequest
	return h.update(c, &req, func(userID, id uint) (*model.Task, string, error) {
		task, err := h.taskService.UpdateTitle(c.Request().Context(), userID, id, req.Title)
		return task, "Task title updated", err
	})
}

// ToggleCompleted godoc
// @Summary Flip a task's completed flag
// @Description The body must contain a completed field; its value is ignored.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body ToggleRequest true "Toggle marker"
// @Success 200 {object} UpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks/{id}/completed-toggle [patch]
func (h *TaskHandler) ToggleCompleted(c echo.Context) error {
	var req ToggleRequest
	return h.update(c, &req, func(userID, id uint) (*model.Task, string, error) {
		task, err := h.taskService.ToggleCompleted(c.Request().Context(), userID, id, req.Completed != nil)
		if err != nil {
			return nil, "", err
		}
		state := "incomplete"
		if task.Completed {
			state = "completed"
		}
		return task, fmt.Sprintf("Task '%s' marked as %s", task.TitleOrEmpty(), state), nil
	})
}

// UpdatePriority godoc
// @Summary Update a task priority
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body PriorityRequest true "New priority"
// @Success 200 {object} UpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks/{id}/priority [patch]
func (h *TaskHandler) UpdatePriority(c echo.Context) error {
	var req PriorityRequest
	return h.update(c, &req, func(userID, id uint) (*model.Task, string, error) {
		task, err := h.taskService.UpdatePriority(c.Request().Context(), userID, id, req.Priority)
		if err != nil {
			return nil, "", err
		}
		return task, fmt.Sprintf("Task priority updated to '%s'", task.Priority), nil
	})
}

// update is the shared shape of the PATCH handlers: resolve the caller and
// task id, bind req, run apply and answer with the message and updated_at.
func (h *TaskHandler) update(c echo.Context, req interface{}, apply func(userID, id uint) (*model.Task, string, error)) error {
	user, err := h.user(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	id, err := taskID(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	if err := c.Bind(req); err != nil {
		return errorResponse(c, h.log, badRequest("invalid request body"))
	}

	task, message, err := apply(user.ID, id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(http.StatusOK, UpdateResponse{Message: message, UpdatedAt: task.UpdatedAt})
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/my-tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := h.user(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	id, err := taskID(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	if err := h.taskService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Msg: "Task deleted"})
}
