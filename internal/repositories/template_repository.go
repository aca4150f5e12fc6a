package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type TemplateRepository struct {
	db *gorm.DB
}

type TemplateFilter struct {
	Category       string
	ExecutionModel constants.ExecutionModel
	Scope          constants.TemplateScope
	// DomainID restricts results to templates visible to the domain.
	DomainID string
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TemplateRepository) Save(ctx context.Context, t *model.Template) error {
	t.UpdatedAt = time.Now().UTC()
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*model.Template, error) {
	var t model.Template
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TemplateRepository) FindByKey(ctx context.Context, key string) (*model.Template, error) {
	var t model.Template
	if err := r.db.WithContext(ctx).First(&t, "slug = ?", key).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindByRef resolves ref as an internal id first, then as a business key.
func (r *TemplateRepository) FindByRef(ctx context.Context, ref string) (*model.Template, error) {
	t, err := r.FindByID(ctx, ref)
	if err == ErrNotFound {
		return r.FindByKey(ctx, ref)
	}
	return t, err
}

func (r *TemplateRepository) ListActive(ctx context.Context, f TemplateFilter) ([]model.Template, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.ExecutionModel != "" {
		query = query.Where("execution_model = ?", f.ExecutionModel)
	}
	if f.Scope != "" {
		query = query.Where("scope = ?", f.Scope)
	}
	if f.DomainID != "" {
		query = query.Where("scope = ? OR (scope = ? AND scope_domain_id = ?)",
			constants.ScopeGlobal, constants.ScopeDomain, f.DomainID)
	}

	var templates []model.Template
	err := query.Order("name asc").Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Template{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
