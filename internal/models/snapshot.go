package model

import (
	"fmt"
	"time"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

// TaskSnapshot is the frozen content carried by DomainTask, UserTask and
// Execution records. Exactly one variant section is set, matching
// ExecutionModel. Fields without a known home go to Extra.
type TaskSnapshot struct {
	TemplateID         string                   `json:"template_id"`
	TemplateKey        string                   `json:"template_key"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Category           string                   `json:"category"`
	ExecutionModel     constants.ExecutionModel `json:"execution_model"`
	SystemPrompt       string                   `json:"system_prompt"`
	IntroMessage       string                   `json:"intro_message"`
	RequiredParameters []Parameter              `json:"required_parameters,omitempty"`
	Checklist          []ChecklistStep          `json:"checklist,omitempty"`
	Priority           constants.Priority       `json:"priority,omitempty"`
	TaskType           string                   `json:"task_type,omitempty"`

	Form      *FormSection      `json:"form,omitempty"`
	SOP       *SOPSection       `json:"sop,omitempty"`
	Knowledge *KnowledgeSection `json:"knowledge,omitempty"`
	Workflow  *WorkflowSection  `json:"workflow,omitempty"`
	Training  *TrainingSection  `json:"training,omitempty"`

	Extra      map[string]any `json:"extra,omitempty"`
	CapturedAt time.Time      `json:"captured_at"`
}

type FormSection struct {
	Fields []Parameter `json:"fields"`
}

type SOPSection struct {
	Procedure string          `json:"procedure"`
	Steps     []ChecklistStep `json:"steps,omitempty"`
}

type KnowledgeSection struct {
	Sources []string `json:"sources,omitempty"`
}

type WorkflowSection struct {
	ProcessKey string `json:"process_key,omitempty"`
}

type TrainingSection struct {
	Modules      []string `json:"modules,omitempty"`
	PassingScore int      `json:"passing_score,omitempty"`
}

// Settings keys lifted into variant sections.
const (
	SettingSources      = "sources"
	SettingProcessKey   = "processKey"
	SettingModules      = "modules"
	SettingPassingScore = "passingScore"
)

// SnapshotFromTemplate deep-copies the content fields of t into a new snapshot.
func SnapshotFromTemplate(t *Template, capturedAt time.Time) TaskSnapshot {
	s := TaskSnapshot{
		TemplateID:         t.ID,
		TemplateKey:        t.Key,
		Title:              t.Name,
		Description:        t.Description,
		Category:           t.Category,
		ExecutionModel:     t.ExecutionModel,
		SystemPrompt:       t.SystemPrompt,
		IntroMessage:       t.IntroMessage,
		RequiredParameters: copyParameters(t.RequiredParameters),
		Checklist:          copySteps(t.Checklist),
		CapturedAt:         capturedAt,
	}

	settings := copyMap(t.Settings)
	switch t.ExecutionModel {
	case constants.ModelForm:
		s.Form = &FormSection{Fields: copyParameters(t.RequiredParameters)}
	case constants.ModelSOP:
		s.SOP = &SOPSection{
			Procedure: t.StandardOperatingProcedure,
			Steps:     copySteps(t.Checklist),
		}
	case constants.ModelKnowledge:
		s.Knowledge = &KnowledgeSection{Sources: stringSlice(settings[SettingSources])}
		delete(settings, SettingSources)
	case constants.ModelWorkflow:
		pk, _ := settings[SettingProcessKey].(string)
		s.Workflow = &WorkflowSection{ProcessKey: pk}
		delete(settings, SettingProcessKey)
	case constants.ModelTraining:
		s.Training = &TrainingSection{
			Modules:      stringSlice(settings[SettingModules]),
			PassingScore: intValue(settings[SettingPassingScore]),
		}
		delete(settings, SettingModules)
		delete(settings, SettingPassingScore)
	}
	if t.ExecutionModel != constants.ModelSOP && t.StandardOperatingProcedure != "" {
		if settings == nil {
			settings = map[string]any{}
		}
		settings["standardOperatingProcedure"] = t.StandardOperatingProcedure
	}
	if len(settings) > 0 {
		s.Extra = settings
	}
	return s
}

// Clone returns a deep copy sharing no mutable state with s.
func (s TaskSnapshot) Clone() TaskSnapshot {
	c := s
	c.RequiredParameters = copyParameters(s.RequiredParameters)
	c.Checklist = copySteps(s.Checklist)
	c.Extra = copyMap(s.Extra)
	if s.Form != nil {
		c.Form = &FormSection{Fields: copyParameters(s.Form.Fields)}
	}
	if s.SOP != nil {
		c.SOP = &SOPSection{Procedure: s.SOP.Procedure, Steps: copySteps(s.SOP.Steps)}
	}
	if s.Knowledge != nil {
		c.Knowledge = &KnowledgeSection{Sources: copyStrings(s.Knowledge.Sources)}
	}
	if s.Workflow != nil {
		w := *s.Workflow
		c.Workflow = &w
	}
	if s.Training != nil {
		c.Training = &TrainingSection{Modules: copyStrings(s.Training.Modules), PassingScore: s.Training.PassingScore}
	}
	return c
}

// Validate checks that exactly the variant section matching ExecutionModel is set.
func (s TaskSnapshot) Validate() error {
	if !s.ExecutionModel.Valid() {
		return fmt.Errorf("unknown execution model %q", s.ExecutionModel)
	}
	present := map[constants.ExecutionModel]bool{
		constants.ModelForm:      s.Form != nil,
		constants.ModelSOP:       s.SOP != nil,
		constants.ModelKnowledge: s.Knowledge != nil,
		constants.ModelWorkflow:  s.Workflow != nil,
		constants.ModelTraining:  s.Training != nil,
	}
	for model, set := range present {
		if set != (model == s.ExecutionModel) {
			return fmt.Errorf("snapshot section %q does not match execution model %q", model, s.ExecutionModel)
		}
	}
	return nil
}

// MissingParameters lists required parameters absent from data.
func (s TaskSnapshot) MissingParameters(data map[string]any) []string {
	var missing []string
	for _, p := range s.RequiredParameters {
		if !p.Required {
			continue
		}
		if v, ok := data[p.Name]; !ok || v == nil || v == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

func copyParameters(in []Parameter) []Parameter {
	if in == nil {
		return nil
	}
	out := make([]Parameter, len(in))
	copy(out, in)
	return out
}

func copySteps(in []ChecklistStep) []ChecklistStep {
	if in == nil {
		return nil
	}
	out := make([]ChecklistStep, len(in))
	copy(out, in)
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return copyStrings(val)
	default:
		return val
	}
}

func stringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return copyStrings(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return 0
}
