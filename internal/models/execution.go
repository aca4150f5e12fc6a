package model

import (
	"time"

	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

// Execution is one conversational run against a frozen snapshot. DomainTaskID
// and UserTaskID are traceability metadata only.
type Execution struct {
	ID            string                    `gorm:"primaryKey;size:36" json:"execution_id"`
	UserID        string                    `gorm:"index;size:64;not null" json:"user_id"`
	DomainID      string                    `gorm:"index;size:64;not null" json:"domain_id"`
	DomainTaskID  string                    `gorm:"index;size:36;not null" json:"domain_task_id"`
	UserTaskID    *string                   `gorm:"index;size:36" json:"user_task_id,omitempty"`
	Snapshot      TaskSnapshot              `gorm:"serializer:json;not null" json:"task_snapshot"`
	Status        constants.ExecutionStatus `gorm:"type:varchar(20);not null" json:"status"`
	MessageCount  int                       `gorm:"not null;default:0" json:"message_count"`
	LastMessageAt *time.Time                `json:"last_message_at,omitempty"`
	Version       uint                      `gorm:"not null;default:1" json:"version"`
	AssignedAt    time.Time                 `json:"assigned_at"`
	StartedAt     *time.Time                `json:"started_at,omitempty"`
	CompletedAt   *time.Time                `json:"completed_at,omitempty"`
	DeletedAt     gorm.DeletedAt            `gorm:"index" json:"-"`
}
