package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Create appends a message. ErrDuplicate means the (execution, seq) slot is taken.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// List returns up to limit messages ordered by seq ascending. When beforeSeq
// is positive, only messages strictly preceding it are considered and the
// latest of those are returned.
func (r *MessageRepository) List(ctx context.Context, executionID string, beforeSeq, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	query := r.db.WithContext(ctx).Where("execution_id = ?", executionID)
	if beforeSeq > 0 {
		query = query.Where("seq < ?", beforeSeq)
	}

	var messages []model.Message
	if err := query.Order("seq desc").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) UpdateFeedback(ctx context.Context, id string, fb *model.Feedback) error {
	res := r.db.WithContext(ctx).Model(&model.Message{ID: id}).
		Select("feedback").
		Updates(&model.Message{Feedback: fb})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MessageRepository) SoftDeleteByExecution(ctx context.Context, executionID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Message{}, "execution_id = ?", executionID)
	return res.RowsAffected, res.Error
}
