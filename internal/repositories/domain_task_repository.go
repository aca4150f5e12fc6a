package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type DomainTaskRepository struct {
	db *gorm.DB
}

func NewDomainTaskRepository(db *gorm.DB) *DomainTaskRepository {
	return &DomainTaskRepository{db: db}
}

func (r *DomainTaskRepository) WithTx(tx *gorm.DB) *DomainTaskRepository {
	return &DomainTaskRepository{db: tx}
}

// Create inserts an active adoption. ErrDuplicate means another active
// adoption for the same (domain, template) already exists.
func (r *DomainTaskRepository) Create(ctx context.Context, dt *model.DomainTask) error {
	if dt.ID == "" {
		dt.ID = uuid.NewString()
	}
	activeKey := model.AdoptionKey(dt.DomainID, dt.TemplateID)
	dt.ActiveKey = &activeKey
	dt.IsActive = true
	return translate(r.db.WithContext(ctx).Create(dt).Error)
}

func (r *DomainTaskRepository) FindByID(ctx context.Context, id string) (*model.DomainTask, error) {
	var dt model.DomainTask
	if err := r.db.WithContext(ctx).First(&dt, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &dt, nil
}

// FindByRef resolves ref as an id, then as the active record for a business key.
func (r *DomainTaskRepository) FindByRef(ctx context.Context, ref string) (*model.DomainTask, error) {
	dt, err := r.FindByID(ctx, ref)
	if err != ErrNotFound {
		return dt, err
	}

	var byKey model.DomainTask
	err = r.db.WithContext(ctx).
		Where("slug = ?", ref).
		Order("is_active desc, adopted_at desc").
		First(&byKey).Error
	if err != nil {
		return nil, translate(err)
	}
	return &byKey, nil
}

func (r *DomainTaskRepository) FindActive(ctx context.Context, domainID, templateID string) (*model.DomainTask, error) {
	var dt model.DomainTask
	err := r.db.WithContext(ctx).
		First(&dt, "active_key = ?", model.AdoptionKey(domainID, templateID)).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dt, nil
}

func (r *DomainTaskRepository) ListByDomain(ctx context.Context, domainID string, includeInactive bool) ([]model.DomainTask, error) {
	query := r.db.WithContext(ctx).Where("domain_id = ?", domainID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var tasks []model.DomainTask
	err := query.Order("adopted_at desc").Find(&tasks).Error
	return tasks, err
}

func (r *DomainTaskRepository) ActiveTemplateIDs(ctx context.Context, domainID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.DomainTask{}).
		Where("domain_id = ? AND is_active = ?", domainID, true).
		Pluck("template_id", &ids).Error
	return ids, err
}

// Deactivate clears the active marker. It reports false when the record
// was already inactive.
func (r *DomainTaskRepository) Deactivate(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.DomainTask{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":      false,
			"active_key":     nil,
			"deactivated_by": actorID,
			"deactivated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
