package model

import "time"

// DomainTask records that a domain adopted a template. ActiveKey is set while
// the adoption is active and cleared on deactivation; its unique index keeps
// at most one active adoption per (domain, template).
type DomainTask struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	Key           string       `gorm:"column:slug;index;size:200;not null" json:"key"`
	DomainID      string       `gorm:"index;size:64;not null" json:"domain_id"`
	TemplateID    string       `gorm:"index;size:36;not null" json:"template_id"`
	Snapshot      TaskSnapshot `gorm:"serializer:json;not null" json:"snapshot"`
	IsActive      bool         `gorm:"not null;default:true" json:"is_active"`
	ActiveKey     *string      `gorm:"uniqueIndex;size:110" json:"-"`
	AdoptedBy     string       `gorm:"size:64;not null" json:"adopted_by"`
	AdoptedAt     time.Time    `json:"adopted_at"`
	DeactivatedBy string       `gorm:"size:64" json:"deactivated_by,omitempty"`
	DeactivatedAt *time.Time   `json:"deactivated_at,omitempty"`

	AssignmentCount int64 `gorm:"-" json:"assignment_count"`
}

func AdoptionKey(domainID, templateID string) string {
	return domainID + "|" + templateID
}
