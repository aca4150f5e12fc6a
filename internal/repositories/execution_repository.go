package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type ExecutionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

func (r *ExecutionRepository) WithTx(tx *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: tx}
}

func (r *ExecutionRepository) Create(ctx context.Context, ex *model.Execution) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	ex.Status = constants.StatusAssigned
	ex.Version = 1

	return translate(r.db.WithContext(ctx).Create(ex).Error)
}

func (r *ExecutionRepository) FindByID(ctx context.Context, id string) (*model.Execution, error) {
	var ex model.Execution
	if err := r.db.WithContext(ctx).First(&ex, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ex, nil
}

func (r *ExecutionRepository) ListByUser(ctx context.Context, userID, domainTaskID string) ([]model.Execution, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if domainTaskID != "" {
		query = query.Where("domain_task_id = ?", domainTaskID)
	}

	var executions []model.Execution
	err := query.Order("assigned_at desc").Find(&executions).Error
	return executions, err
}

// MarkStarted moves an assigned execution to in_progress. Only the first
// caller wins; it reports whether this call performed the transition.
func (r *ExecutionRepository) MarkStarted(ctx context.Context, id string, startedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Execution{}).
		Where("id = ? AND status = ?", id, constants.StatusAssigned).
		Updates(map[string]interface{}{
			"status":     constants.StatusInProgress,
			"started_at": startedAt,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Transition moves the execution from one status to another and stamps
// completed_at. It reports false when the current status is not from.
func (r *ExecutionRepository) Transition(ctx context.Context, id string, from, to constants.ExecutionStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Execution{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"completed_at": at,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RecordMessage persists the message counters of ex guarded by its version.
func (r *ExecutionRepository) RecordMessage(ctx context.Context, ex *model.Execution) error {
	res := r.db.WithContext(ctx).Model(&model.Execution{}).
		Where("id = ? AND version = ?", ex.ID, ex.Version).
		Updates(map[string]interface{}{
			"message_count":   ex.MessageCount,
			"last_message_at": ex.LastMessageAt,
			"version":         gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	ex.Version++
	return nil
}

func (r *ExecutionRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Execution{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
