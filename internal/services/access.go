package services

import (
	"context"
	"errors"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

// AccessChecker is the domain-membership capability consumed by the pipeline.
type AccessChecker interface {
	CanAssign(ctx context.Context, userID, domainID string) (bool, error)

	IsDomainAdmin(ctx context.Context, userID, domainID string) (bool, error)
}

type MembershipChecker struct {
	repo *repository.DomainMembershipRepository
}

func NewMembershipChecker(repo *repository.DomainMembershipRepository) *MembershipChecker {
	return &MembershipChecker{repo: repo}
}

func (c *MembershipChecker) CanAssign(ctx context.Context, userID, domainID string) (bool, error) {
	_, err := c.repo.Find(ctx, userID, domainID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *MembershipChecker) IsDomainAdmin(ctx context.Context, userID, domainID string) (bool, error) {
	m, err := c.repo.Find(ctx, userID, domainID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Role == constants.RoleAdmin, nil
}

func requireAccess(ctx context.Context, access AccessChecker, userID, domainID string) error {
	ok, err := access.CanAssign(ctx, userID, domainID)
	if err != nil {
		return err
	}
	if !ok {
		return exceptions.ErrDomainAccessDenied
	}
	return nil
}
