package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
)

// UserContextKey is the echo context key under which the auth middleware
// stores the authenticated *model.User.
const UserContextKey = "user"

// MessageResponse is the body of register and delete responses.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// TaskResponse is the public representation of a task.
type TaskResponse struct {
	ID          uint           `json:"id"`
	Title       *string        `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority" swaggertype:"string" enums:"high,medium,low,default"`
	Completed   bool           `json:"completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CompletedTaskResponse is the short form returned by the completed listing.
type CompletedTaskResponse struct {
	ID        uint    `json:"id"`
	Title     *string `json:"title"`
	Completed bool    `json:"completed"`
}

// UpdateResponse is returned by every field update.
type UpdateResponse struct {
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func currentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserContextKey).(*model.User)
	return user, ok && user != nil
}

// errorResponse converts err into an echo HTTP error. Unexpected errors are
// logged here, once, and reported as an opaque 500.
func errorResponse(c echo.Context, log *zap.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.Code == "INTERNAL_ERROR" {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return apperrors.Validation(message)
}

// missingFields lists the json names of fields that failed validation.
func missingFields(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	return fields
}

func missingFieldsMessage(err error) string {
	fields := missingFields(err)
	switch len(fields) {
	case 0:
		return "invalid request body"
	case 1:
		return "Missing field: " + fields[0]
	default:
		return "Missing field(s): " + strings.Join(fields, ", ")
	}
}
