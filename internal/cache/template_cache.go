package cache

import (
	"context"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

// TemplateCache is the read-through cache owned by the template registry.
// Entries are reachable by id and by business key; Invalidate must drop both.
type TemplateCache interface {
	Get(ctx context.Context, ref string) (*model.Template, bool)

	Set(ctx context.Context, t *model.Template) error

	Invalidate(ctx context.Context, t *model.Template) error
}
