package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

type CreateExecutionInput struct {
	UserID               string
	DomainID             string
	DomainTaskID         string
	UserTaskID           string
	SystemPromptOverride string
}

// ExecutionService owns the execution state machine:
// assigned -> in_progress -> completed | failed.
type ExecutionService struct {
	repo        *repository.ExecutionRepository
	messages    *repository.MessageRepository
	domainTasks *repository.DomainTaskRepository
	userTasks   *repository.UserTaskRepository
	tx          *repository.TxManager
	access      AccessChecker
	metrics     *Metrics
	log         zerolog.Logger
	now         func() time.Time
}

func NewExecutionService(
	repo *repository.ExecutionRepository,
	messages *repository.MessageRepository,
	domainTasks *repository.DomainTaskRepository,
	userTasks *repository.UserTaskRepository,
	tx *repository.TxManager,
	access AccessChecker,
	metrics *Metrics,
	log zerolog.Logger,
) *ExecutionService {
	return &ExecutionService{
		repo:        repo,
		messages:    messages,
		domainTasks: domainTasks,
		userTasks:   userTasks,
		tx:          tx,
		access:      access,
		metrics:     metrics,
		log:         log.With().Str("component", "execution").Logger(),
		now:         time.Now,
	}
}

// CreateExecution opens a new run. The snapshot comes from the user's
// assignment when one is given, otherwise from the active domain task.
// Every call creates a new execution.
func (s *ExecutionService) CreateExecution(ctx context.Context, in CreateExecutionInput) (*model.Execution, error) {
	if in.UserID == "" {
		return nil, exceptions.Validation("user id is required")
	}
	if in.UserTaskID == "" && in.DomainTaskID == "" {
		return nil, exceptions.Validation("domain task id or user task id is required")
	}

	ex := &model.Execution{
		UserID:     in.UserID,
		AssignedAt: s.now().UTC(),
	}

	if in.UserTaskID != "" {
		ut, err := s.userTasks.FindByID(ctx, in.UserTaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, exceptions.ErrUserTaskNotFound
			}
			return nil, err
		}
		if ut.UserID != in.UserID {
			return nil, exceptions.ErrNotOwner
		}
		if in.DomainTaskID != "" && in.DomainTaskID != ut.DomainTaskID {
			dt, err := s.domainTasks.FindByRef(ctx, in.DomainTaskID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			if dt == nil || dt.ID != ut.DomainTaskID {
				return nil, exceptions.Validation("user task %s does not belong to domain task %s", ut.ID, in.DomainTaskID)
			}
		}
		if in.DomainID != "" && ut.DomainID != in.DomainID {
			return nil, exceptions.Validation("user task %s does not belong to domain %s", ut.ID, in.DomainID)
		}

		ex.DomainID = ut.DomainID
		ex.DomainTaskID = ut.DomainTaskID
		ex.UserTaskID = &ut.ID
		ex.Snapshot = ut.Snapshot.Clone()
	} else {
		dt, err := s.domainTasks.FindByRef(ctx, in.DomainTaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, exceptions.ErrDomainTaskNotFound
			}
			return nil, err
		}
		if !dt.IsActive {
			return nil, exceptions.ErrDomainTaskNotFound
		}
		if in.DomainID != "" && dt.DomainID != in.DomainID {
			return nil, exceptions.ErrDomainTaskNotFound
		}
		if err := requireAccess(ctx, s.access, in.UserID, dt.DomainID); err != nil {
			return nil, err
		}

		ex.DomainID = dt.DomainID
		ex.DomainTaskID = dt.ID
		ex.Snapshot = dt.Snapshot.Clone()
	}

	if override := strings.TrimSpace(in.SystemPromptOverride); override != "" {
		ex.Snapshot.SystemPrompt = override
	}

	if err := s.repo.Create(ctx, ex); err != nil {
		return nil, err
	}

	s.metrics.Executions.Inc()
	s.log.Info().
		Str("execution_id", ex.ID).
		Str("user_id", ex.UserID).
		Str("domain_task_id", ex.DomainTaskID).
		Msg("execution created")
	return ex, nil
}

// advanceOnFirstMessage moves an assigned execution to in_progress. The
// message ledger calls it inside the transaction that records seq 1. It
// reports whether this call fired the transition.
func (s *ExecutionService) advanceOnFirstMessage(ctx context.Context, repo *repository.ExecutionRepository, executionID string) (bool, error) {
	started, err := repo.MarkStarted(ctx, executionID, s.now().UTC())
	if err != nil {
		return false, err
	}
	if started {
		s.metrics.transition(constants.StatusAssigned, constants.StatusInProgress)
		s.log.Debug().Str("execution_id", executionID).Msg("execution started")
	}
	return started, nil
}

// CompleteExecution closes an in_progress execution with outcome, which must
// be completed or failed.
func (s *ExecutionService) CompleteExecution(ctx context.Context, executionID string, outcome constants.ExecutionStatus) (*model.Execution, error) {
	if !outcome.IsTerminal() {
		return nil, exceptions.Validation("outcome must be %q or %q", constants.StatusCompleted, constants.StatusFailed)
	}

	ex, err := s.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if !ex.Status.CanTransitionTo(outcome) {
		return nil, fmt.Errorf("%w: %s -> %s", exceptions.ErrInvalidTransition, ex.Status, outcome)
	}

	moved, err := s.repo.Transition(ctx, ex.ID, constants.StatusInProgress, outcome, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !moved {
		current, err := s.GetExecution(ctx, ex.ID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s -> %s", exceptions.ErrInvalidTransition, current.Status, outcome)
	}

	s.metrics.transition(constants.StatusInProgress, outcome)
	s.log.Info().Str("execution_id", ex.ID).Str("outcome", string(outcome)).Msg("execution closed")
	return s.GetExecution(ctx, ex.ID)
}

func (s *ExecutionService) GetExecution(ctx context.Context, executionID string) (*model.Execution, error) {
	ex, err := s.repo.FindByID(ctx, executionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrExecutionNotFound
		}
		return nil, err
	}
	return ex, nil
}

func (s *ExecutionService) ListExecutions(ctx context.Context, userID, domainTaskID string) ([]model.Execution, error) {
	if userID == "" {
		return nil, exceptions.Validation("user id is required")
	}
	return s.repo.ListByUser(ctx, userID, domainTaskID)
}

// DeleteExecution soft-deletes the execution and its messages together.
func (s *ExecutionService) DeleteExecution(ctx context.Context, executionID, requestingUserID string) error {
	ex, err := s.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}
	if ex.UserID != requestingUserID {
		return exceptions.ErrNotOwner
	}

	var removed int64
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		n, err := s.messages.WithTx(tx).SoftDeleteByExecution(ctx, ex.ID)
		if err != nil {
			return err
		}
		removed = n
		return s.repo.WithTx(tx).SoftDelete(ctx, ex.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return exceptions.ErrExecutionNotFound
		}
		return err
	}

	s.log.Info().Str("execution_id", ex.ID).Int64("messages", removed).Msg("execution deleted")
	return nil
}
