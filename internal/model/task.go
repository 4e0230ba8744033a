package model

import (
	"fmt"
	"time"
)

// Priority is the urgency tag of a task.
type Priority string

const (
	PriorityHigh    Priority = "high"
	PriorityMedium  Priority = "medium"
	PriorityLow     Priority = "low"
	PriorityDefault Priority = "default"
)

// Priorities lists every accepted priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityDefault}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityDefault:
		return true
	}
	return false
}

// ParsePriority converts s into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("Invalid priority entry '%s': must be one of 'high', 'medium', 'low', 'default'", s)
	}
	return p, nil
}

// Task is a unit of work owned by exactly one user. UserID is an explicit
// foreign key; the owner row is never loaded implicitly.
type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       *string   `json:"title" gorm:"size:256"`
	Description string    `json:"description" gorm:"size:256;not null"`
	Priority    Priority  `json:"priority" gorm:"size:20;not null;default:'default';check:chk_tasks_priority,priority IN ('high','medium','low','default')"`
	Completed   bool      `json:"completed" gorm:"not null;default:false;index:idx_tasks_owner_completed,priority:2"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	UserID      uint      `json:"user_id" gorm:"not null;index;index:idx_tasks_owner_completed,priority:1"`
}

// TitleOrEmpty returns the title, or "" when none was set.
func (t *Task) TitleOrEmpty() string {
	if t.Title == nil {
		return ""
	}
	return *t.Title
}
