package model

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists every accepted status value
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusDone}

// IsValid reports whether s is one of the known statuses
func (s TaskStatus) IsValid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Task is a unit of work inside a project. ProjectID is fixed at creation
// and the task's effective owner is the owner of that project.
type Task struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"not null;index" json:"project_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Status    TaskStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DueDate   datatypes.Date `gorm:"not null;index" json:"due_date"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relationships
	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// NewDate truncates t to a calendar date in UTC
func NewDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
