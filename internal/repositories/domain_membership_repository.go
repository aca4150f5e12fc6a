package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type DomainMembershipRepository struct {
	db *gorm.DB
}

func NewDomainMembershipRepository(db *gorm.DB) *DomainMembershipRepository {
	return &DomainMembershipRepository{db: db}
}

func (r *DomainMembershipRepository) Upsert(ctx context.Context, m *model.DomainMembership) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "domain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(m).Error
}

func (r *DomainMembershipRepository) Find(ctx context.Context, userID, domainID string) (*model.DomainMembership, error) {
	var m model.DomainMembership
	err := r.db.WithContext(ctx).First(&m, "user_id = ? AND domain_id = ?", userID, domainID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}
