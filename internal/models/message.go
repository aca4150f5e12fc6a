package model

import (
	"time"

	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

// Message is one conversation turn. Content is immutable once written; only
// Feedback changes afterwards. Seq orders messages within an execution.
type Message struct {
	ID              string                `gorm:"primaryKey;size:36" json:"id"`
	ExecutionID     string                `gorm:"size:36;not null;uniqueIndex:ux_execution_seq,priority:1" json:"execution_id"`
	Seq             int                   `gorm:"not null;uniqueIndex:ux_execution_seq,priority:2" json:"seq"`
	Role            constants.MessageRole `gorm:"type:varchar(20);not null" json:"role"`
	Content         string                `gorm:"not null" json:"content"`
	UserID          string                `gorm:"size:64" json:"user_id"`
	ParentMessageID *string               `gorm:"size:36" json:"parent_message_id,omitempty"`
	Feedback        *Feedback             `gorm:"serializer:json" json:"feedback,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	DeletedAt       gorm.DeletedAt        `gorm:"index" json:"-"`
}

type Feedback struct {
	Rating    constants.FeedbackRating `json:"rating"`
	Comment   string                   `json:"comment,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}
