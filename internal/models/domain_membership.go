package model

import (
	"time"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

type DomainMembership struct {
	UserID    string               `gorm:"primaryKey;size:64" json:"user_id" yaml:"user_id"`
	DomainID  string               `gorm:"primaryKey;size:64" json:"domain_id" yaml:"domain_id"`
	Role      constants.DomainRole `gorm:"type:varchar(10);not null;default:member" json:"role" yaml:"role"`
	CreatedAt time.Time            `json:"created_at" yaml:"-"`
}

// AllModels lists every persisted model for migrations.
func AllModels() []any {
	return []any{
		&Template{},
		&DomainTask{},
		&UserTask{},
		&Execution{},
		&Message{},
		&DomainMembership{},
	}
}
