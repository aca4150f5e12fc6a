package dto

import (
	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type AdoptTemplateRequest struct {
	TemplateID     string               `json:"template_id"`
	Customizations model.Customizations `json:"customizations"`
}

type AssignTaskRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type CompleteTaskRequest struct {
	CompletionData map[string]any `json:"completion_data"`
}

type CreateExecutionRequest struct {
	DomainID             string `json:"domain_id"`
	DomainTaskID         string `json:"domain_task_id"`
	UserTaskID           string `json:"user_task_id"`
	SystemPromptOverride string `json:"system_prompt_override"`
}

type CompleteExecutionRequest struct {
	Outcome string `json:"outcome"`
}

type AppendMessageRequest struct {
	Role            string `json:"role"`
	Content         string `json:"content"`
	ParentMessageID string `json:"parent_message_id"`
}

type FeedbackRequest struct {
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

// UpsertTemplateRequest is the admin template payload. It carries no id;
// templates are matched by key. IsActive is optional.
type UpsertTemplateRequest struct {
	Key                        string                `json:"key"`
	Name                       string                `json:"name"`
	Description                string                `json:"description"`
	Category                   string                `json:"category"`
	ExecutionModel             string                `json:"execution_model"`
	RequiredParameters         []model.Parameter     `json:"required_parameters"`
	SystemPrompt               string                `json:"system_prompt"`
	IntroMessage               string                `json:"intro_message"`
	Checklist                  []model.ChecklistStep `json:"checklist"`
	StandardOperatingProcedure string                `json:"standard_operating_procedure"`
	Settings                   map[string]any        `json:"settings"`
	Scope                      string                `json:"scope"`
	ScopeDomainID              string                `json:"scope_domain_id"`
	IsActive                   *bool                 `json:"is_active"`
}

func (r *UpsertTemplateRequest) Template() *model.Template {
	return &model.Template{
		Key:                        r.Key,
		Name:                       r.Name,
		Description:                r.Description,
		Category:                   r.Category,
		ExecutionModel:             constants.ExecutionModel(r.ExecutionModel),
		RequiredParameters:         r.RequiredParameters,
		SystemPrompt:               r.SystemPrompt,
		IntroMessage:               r.IntroMessage,
		Checklist:                  r.Checklist,
		StandardOperatingProcedure: r.StandardOperatingProcedure,
		Settings:                   r.Settings,
		Scope:                      constants.TemplateScope(r.Scope),
		ScopeDomainID:              r.ScopeDomainID,
	}
}
