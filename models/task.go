package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses.
const (
	TaskAssigned   = "assigned"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// taskStatusRank orders the task lifecycle: assigned < in_progress < completed.
var taskStatusRank = map[string]int{
	TaskAssigned:   0,
	TaskInProgress: 1,
	TaskCompleted:  2,
}

// Task is a technician work order derived from an appointment. Its lifecycle
// is independent of the appointment's, except that completing the appointment
// cascades completion to every task.
type Task struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	AppointmentID          uint           `gorm:"not null;index" json:"appointment_id"` // foreign key to appointments table
	Appointment            Appointment    `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"-"`
	TechnicianID           uint           `gorm:"not null;index" json:"technician_id"` // foreign key to profiles table
	Technician             Profile        `gorm:"foreignKey:TechnicianID" json:"technician"`
	TaskDescription        string         `gorm:"not null" json:"task_description"`
	EstimatedDurationHours float64        `gorm:"not null" json:"estimated_duration_hours"`
	Status                 string         `gorm:"not null;default:'assigned'" json:"status"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// IsValidTaskStatus reports whether status is a known task status.
func IsValidTaskStatus(status string) bool {
	_, ok := taskStatusRank[status]
	return ok
}

// TaskStatusForward reports whether moving from one task status to another is
// forward progress. Regressions are never allowed.
func TaskStatusForward(from, to string) bool {
	return taskStatusRank[to] > taskStatusRank[from]
}

// TaskStatusNext reports whether to is the immediate next step after from.
// Technicians must walk the ledger one step at a time.
func TaskStatusNext(from, to string) bool {
	return taskStatusRank[to] == taskStatusRank[from]+1
}
