package model

import "task-lifecycle.com/task-lifecycle/internal/constants"

// Customizations are tenant overrides applied on top of a template snapshot
// at adoption time. Empty fields leave the template value in place.
type Customizations struct {
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Priority    constants.Priority `json:"priority,omitempty"`
	TaskType    string             `json:"task_type,omitempty"`
	Extra       map[string]any     `json:"extra,omitempty"`
}

// Apply overlays c onto s. Customizations win on conflicting keys.
func (s *TaskSnapshot) Apply(c Customizations) {
	if c.Title != "" {
		s.Title = c.Title
	}
	if c.Description != "" {
		s.Description = c.Description
	}
	if c.Priority != "" {
		s.Priority = c.Priority
	}
	if c.TaskType != "" {
		s.TaskType = c.TaskType
	}
	if len(c.Extra) > 0 {
		if s.Extra == nil {
			s.Extra = make(map[string]any, len(c.Extra))
		}
		for k, v := range c.Extra {
			s.Extra[k] = copyValue(v)
		}
	}
}
