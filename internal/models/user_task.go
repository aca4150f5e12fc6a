package model

import "time"

type UserTask struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	UserID         string         `gorm:"size:64;not null;uniqueIndex:ux_user_domain_task,priority:1" json:"user_id"`
	DomainTaskID   string         `gorm:"size:36;not null;uniqueIndex:ux_user_domain_task,priority:2" json:"domain_task_id"`
	DomainID       string         `gorm:"index;size:64;not null" json:"domain_id"`
	Snapshot       TaskSnapshot   `gorm:"serializer:json;not null" json:"task_snapshot"`
	IsCompleted    bool           `gorm:"not null;default:false" json:"is_completed"`
	IsViewed       bool           `gorm:"not null;default:false" json:"is_viewed"`
	IsHidden       bool           `gorm:"not null;default:false" json:"is_hidden"`
	CompletionData map[string]any `gorm:"serializer:json" json:"completion_data,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	AssignedBy     string         `gorm:"size:64" json:"assigned_by"`
	AssignedAt     time.Time      `gorm:"index" json:"assigned_at"`
	ViewedAt       *time.Time     `json:"viewed_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}
