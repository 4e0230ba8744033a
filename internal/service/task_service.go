package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

var (
	// ErrTaskNotFound covers both missing tasks and tasks owned by someone else.
	ErrTaskNotFound = apperrors.NotFound("Task not found")
	// ErrUserNotFound is returned when the acting user cannot be resolved.
	ErrUserNotFound = apperrors.NotFound("User not found")
)

// TaskService handles task operations scoped to the acting user.
type TaskService interface {
	ListAll(ctx context.Context, userID uint) ([]model.Task, error)
	ListCompleted(ctx context.Context, userID uint) ([]model.Task, error)
	Create(ctx context.Context, userID uint, description string, priority *string) (*model.Task, error)
	UpdateDescription(ctx context.Context, userID, taskID uint, description model.NullString) (*model.Task, error)
	UpdateTitle(ctx context.Context, userID, taskID uint, title model.NullString) (*model.Task, error)
	ToggleCompleted(ctx context.Context, userID, taskID uint, marked bool) (*model.Task, error)
	UpdatePriority(ctx context.Context, userID, taskID uint, priority *string) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uint) error
}

type taskService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	log      *zap.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, log *zap.Logger) TaskService {
	return &taskService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		log:      log,
	}
}

func (s *taskService) ensureUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}

// ListAll returns every task owned by userID.
func (s *taskService) ListAll(ctx context.Context, userID uint) ([]model.Task, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListCompleted returns the completed tasks owned by userID.
func (s *taskService) ListCompleted(ctx context.Context, userID uint) ([]model.Task, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListCompletedByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return tasks, nil
}

// Create stores a new incomplete task. A nil priority means "default".
func (s *taskService) Create(ctx context.Context, userID uint, description string, priority *string) (*model.Task, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, apperrors.Validation("Missing field: description")
	}

	p := model.PriorityDefault
	if priority != nil {
		parsed, err := model.ParsePriority(*priority)
		if err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		p = parsed
	}

	task := &model.Task{
		Description: description,
		Priority:    p,
		Completed:   false,
		UserID:      userID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Info("task created", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return task, nil
}

// UpdateDescription replaces the description. An empty string is
// accepted; null is rejected because every task has a description.
func (s *taskService) UpdateDescription(ctx context.Context, userID, taskID uint, description model.NullString) (*model.Task, error) {
	return s.mutate(ctx, "description", userID, taskID, func(task *model.Task) error {
		if !description.Set {
			return apperrors.Validation("Missing field: description")
		}
		if description.Value == nil {
			return apperrors.Validation("Description cannot be null")
		}
		task.Description = *description.Value
		return nil
	})
}

// UpdateTitle replaces the title. An explicit null clears it.
func (s *taskService) UpdateTitle(ctx context.Context, userID, taskID uint, title model.NullString) (*model.Task, error) {
	return s.mutate(ctx, "title", userID, taskID, func(task *model.Task) error {
		if !title.Set {
			return apperrors.Validation("Missing field: title")
		}
		if title.Value == nil {
			task.Title = nil
			return nil
		}
		value := *title.Value
		task.Title = &value
		return nil
	})
}

// ToggleCompleted flips the completed flag. marked reports whether the
// request carried the completed field; its value is never used.
func (s *taskService) ToggleCompleted(ctx context.Context, userID, taskID uint, marked bool) (*model.Task, error) {
	return s.mutate(ctx, "completed", userID, taskID, func(task *model.Task) error {
		if !marked {
			return apperrors.Validation("Missing field: completed")
		}
		task.Completed = !task.Completed
		return nil
	})
}

// UpdatePriority sets one of the enumerated priorities.
func (s *taskService) UpdatePriority(ctx context.Context, userID, taskID uint, priority *string) (*model.Task, error) {
	return s.mutate(ctx, "priority", userID, taskID, func(task *model.Task) error {
		if priority == nil {
			return apperrors.Validation("Missing field: priority")
		}
		parsed, err := model.ParsePriority(*priority)
		if err != nil {
			return apperrors.Validation(err.Error())
		}
		task.Priority = parsed
		return nil
	})
}

// Delete removes the task if userID owns it.
func (s *taskService) Delete(ctx context.Context, userID, taskID uint) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	err := s.taskRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TaskRepository) error {
		task, err := repo.FindByIDAndOwnerForUpdate(ctx, taskID, userID)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, task)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.Info("task deleted", zap.Uint("task_id", taskID), zap.Uint("user_id", userID))
	return nil
}

// mutate loads the owned task with a row lock, applies fn and saves the
// result in the same transaction. Ownership is checked before fn runs, so
// a foreign task reports not found even when the payload is also invalid.
func (s *taskService) mutate(ctx context.Context, field string, userID, taskID uint, fn func(task *model.Task) error) (*model.Task, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var updated *model.Task
	err := s.taskRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TaskRepository) error {
		task, err := repo.FindByIDAndOwnerForUpdate(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
		if err := repo.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		var domainErr *apperrors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, fmt.Errorf("update task %s: %w", field, err)
	}

	s.log.Info("task updated", zap.Uint("task_id", taskID), zap.Uint("user_id", userID), zap.String("field", field))
	return updated, nil
}
