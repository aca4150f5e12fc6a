package model

import (
	"time"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label,omitempty" yaml:"label"`
	Type     string `json:"type,omitempty" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

type ChecklistStep struct {
	Order int    `json:"order" yaml:"order"`
	Title string `json:"title" yaml:"title"`
	Type  string `json:"type,omitempty" yaml:"type"`
}

// Template is an admin-authored task definition. Templates are never deleted;
// downstream records hold their own snapshot of its content.
type Template struct {
	ID                         string                   `gorm:"primaryKey;size:36" json:"id"`
	Key                        string                   `gorm:"column:slug;uniqueIndex;size:128;not null" json:"key"`
	Name                       string                   `gorm:"not null" json:"name"`
	Description                string                   `json:"description"`
	Category                   string                   `gorm:"index" json:"category"`
	ExecutionModel             constants.ExecutionModel `gorm:"type:varchar(20);not null" json:"execution_model"`
	RequiredParameters         []Parameter              `gorm:"serializer:json" json:"required_parameters"`
	SystemPrompt               string                   `json:"system_prompt"`
	IntroMessage               string                   `json:"intro_message"`
	Checklist                  []ChecklistStep          `gorm:"serializer:json" json:"checklist"`
	StandardOperatingProcedure string                   `json:"standard_operating_procedure"`
	Settings                   map[string]any           `gorm:"serializer:json" json:"settings,omitempty"`
	Scope                      constants.TemplateScope  `gorm:"type:varchar(10);not null;default:global" json:"scope"`
	ScopeDomainID              string                   `gorm:"index;size:64" json:"scope_domain_id,omitempty"`
	IsActive                   bool                     `gorm:"not null" json:"is_active"`
	CreatedAt                  time.Time                `json:"created_at"`
	UpdatedAt                  time.Time                `json:"updated_at"`
}

// VisibleTo reports whether domainID may adopt the template.
func (t *Template) VisibleTo(domainID string) bool {
	if t.Scope == constants.ScopeDomain {
		return t.ScopeDomainID == domainID
	}
	return true
}
