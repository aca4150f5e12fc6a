// Package seed loads templates and domain memberships from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
	"task-lifecycle.com/task-lifecycle/internal/services"
)

type File struct {
	Templates   []Template               `yaml:"templates"`
	Memberships []model.DomainMembership `yaml:"memberships"`
}

// Template mirrors model.Template for YAML input. IsActive defaults to true
// for new templates and leaves existing ones unchanged when omitted.
type Template struct {
	Key                        string                `yaml:"key"`
	Name                       string                `yaml:"name"`
	Description                string                `yaml:"description"`
	Category                   string                `yaml:"category"`
	ExecutionModel             string                `yaml:"execution_model"`
	RequiredParameters         []model.Parameter     `yaml:"required_parameters"`
	SystemPrompt               string                `yaml:"system_prompt"`
	IntroMessage               string                `yaml:"intro_message"`
	Checklist                  []model.ChecklistStep `yaml:"checklist"`
	StandardOperatingProcedure string                `yaml:"standard_operating_procedure"`
	Settings                   map[string]any        `yaml:"settings"`
	Scope                      string                `yaml:"scope"`
	ScopeDomainID              string                `yaml:"scope_domain_id"`
	IsActive                   *bool                 `yaml:"is_active"`
}

type Result struct {
	Templates   int
	Memberships int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

func (t Template) toModel() *model.Template {
	return &model.Template{
		Key:                        t.Key,
		Name:                       t.Name,
		Description:                t.Description,
		Category:                   t.Category,
		ExecutionModel:             constants.ExecutionModel(t.ExecutionModel),
		RequiredParameters:         t.RequiredParameters,
		SystemPrompt:               t.SystemPrompt,
		IntroMessage:               t.IntroMessage,
		Checklist:                  t.Checklist,
		StandardOperatingProcedure: t.StandardOperatingProcedure,
		Settings:                   t.Settings,
		Scope:                      constants.TemplateScope(t.Scope),
		ScopeDomainID:              t.ScopeDomainID,
	}
}

// Apply upserts every template by key and every membership by (user, domain).
func (f *File) Apply(
	ctx context.Context,
	templates *services.TemplateService,
	memberships *repository.DomainMembershipRepository,
) (Result, error) {
	var res Result

	for _, t := range f.Templates {
		if _, err := templates.UpsertTemplate(ctx, t.toModel(), t.IsActive); err != nil {
			return res, fmt.Errorf("template %q: %w", t.Key, err)
		}
		res.Templates++
	}

	for _, m := range f.Memberships {
		m := m
		if m.UserID == "" || m.DomainID == "" {
			return res, fmt.Errorf("membership needs user_id and domain_id")
		}
		if m.Role == "" {
			m.Role = constants.RoleMember
		}
		if err := memberships.Upsert(ctx, &m); err != nil {
			return res, fmt.Errorf("membership %s@%s: %w", m.UserID, m.DomainID, err)
		}
		res.Memberships++
	}

	return res, nil
}
