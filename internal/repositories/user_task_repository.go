package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type UserTaskRepository struct {
	db *gorm.DB
}

type UserTaskFilter struct {
	DomainID         string
	IncludeCompleted bool
	IncludeHidden    bool
}

func NewUserTaskRepository(db *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: db}
}

// Create inserts an assignment. ErrDuplicate means the user already holds
// the domain task.
func (r *UserTaskRepository) Create(ctx context.Context, ut *model.UserTask) error {
	if ut.ID == "" {
		ut.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(ut).Error)
}

func (r *UserTaskRepository) FindByID(ctx context.Context, id string) (*model.UserTask, error) {
	var ut model.UserTask
	if err := r.db.WithContext(ctx).First(&ut, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ut, nil
}

func (r *UserTaskRepository) FindByAssignment(ctx context.Context, userID, domainTaskID string) (*model.UserTask, error) {
	var ut model.UserTask
	err := r.db.WithContext(ctx).
		First(&ut, "user_id = ? AND domain_task_id = ?", userID, domainTaskID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ut, nil
}

func (r *UserTaskRepository) ListByUser(ctx context.Context, userID string, f UserTaskFilter) ([]model.UserTask, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.DomainID != "" {
		query = query.Where("domain_id = ?", f.DomainID)
	}
	if !f.IncludeCompleted {
		query = query.Where("is_completed = ?", false)
	}
	if !f.IncludeHidden {
		query = query.Where("is_hidden = ?", false)
	}

	var tasks []model.UserTask
	err := query.Order("assigned_at desc").Find(&tasks).Error
	return tasks, err
}

// CountByDomainTasks returns assignment counts keyed by domain task id.
// Ids without assignments are absent from the map.
func (r *UserTaskRepository) CountByDomainTasks(ctx context.Context, domainTaskIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(domainTaskIDs))
	if len(domainTaskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DomainTaskID string
		N            int64
	}
	err := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Select("domain_task_id, count(*) as n").
		Where("domain_task_id IN ?", domainTaskIDs).
		Group("domain_task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.DomainTaskID] = row.N
	}
	return counts, nil
}

// MarkViewed sets the viewed flag once; later calls leave viewed_at untouched.
func (r *UserTaskRepository) MarkViewed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("id = ? AND is_viewed = ?", id, false).
		Updates(map[string]interface{}{
			"is_viewed": true,
			"viewed_at": at,
		}).Error
}

// Complete records the first completion only. It reports whether this call
// performed it.
func (r *UserTaskRepository) Complete(ctx context.Context, id string, data map[string]any, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UserTask{ID: id}).
		Where("is_completed = ?", false).
		Select("is_completed", "completion_data", "completed_at").
		Updates(&model.UserTask{
			IsCompleted:    true,
			CompletionData: data,
			CompletedAt:    &at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *UserTaskRepository) ToggleHidden(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("id = ?", id).
		Update("is_hidden", gorm.Expr("NOT is_hidden"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
