package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

// AssignmentService hands domain tasks to users. Each (user, domain task)
// pair has at most one UserTask, whatever the number of concurrent callers.
type AssignmentService struct {
	domainTasks *repository.DomainTaskRepository
	repo        *repository.UserTaskRepository
	access      AccessChecker
	metrics     *Metrics
	log         zerolog.Logger
	now         func() time.Time
}

func NewAssignmentService(
	domainTasks *repository.DomainTaskRepository,
	repo *repository.UserTaskRepository,
	access AccessChecker,
	metrics *Metrics,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		domainTasks: domainTasks,
		repo:        repo,
		access:      access,
		metrics:     metrics,
		log:         log.With().Str("component", "assignment").Logger(),
		now:         time.Now,
	}
}

func (s *AssignmentService) AssignTask(ctx context.Context, userID, domainTaskID, assignedBy, reason string) (*model.UserTask, error) {
	if userID == "" || domainTaskID == "" {
		return nil, exceptions.Validation("user id and domain task id are required")
	}

	dt, err := s.domainTasks.FindByRef(ctx, domainTaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrDomainTaskNotFound
		}
		return nil, err
	}
	if !dt.IsActive {
		return nil, exceptions.ErrDomainTaskNotFound
	}

	if err := requireAccess(ctx, s.access, userID, dt.DomainID); err != nil {
		return nil, err
	}
	if assignedBy != "" && assignedBy != userID {
		if err := requireAccess(ctx, s.access, assignedBy, dt.DomainID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindByAssignment(ctx, userID, dt.ID)
	if err == nil {
		s.metrics.Assignments.WithLabelValues("existing").Inc()
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ut := &model.UserTask{
		UserID:       userID,
		DomainTaskID: dt.ID,
		DomainID:     dt.DomainID,
		Snapshot:     dt.Snapshot.Clone(),
		Reason:       strings.TrimSpace(reason),
		AssignedBy:   assignedBy,
		AssignedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, ut); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		s.metrics.WriteRaces.WithLabelValues("user_task").Inc()
		winner, err := s.repo.FindByAssignment(ctx, userID, dt.ID)
		if err != nil {
			return nil, err
		}
		s.metrics.Assignments.WithLabelValues("existing").Inc()
		return winner, nil
	}

	s.metrics.Assignments.WithLabelValues("created").Inc()
	s.log.Info().
		Str("user_id", userID).
		Str("domain_task_id", dt.ID).
		Str("user_task_id", ut.ID).
		Str("assigned_by", assignedBy).
		Msg("task assigned")
	return ut, nil
}

func (s *AssignmentService) GetUserTasks(ctx context.Context, userID string, f repository.UserTaskFilter) ([]model.UserTask, error) {
	if userID == "" {
		return nil, exceptions.Validation("user id is required")
	}
	return s.repo.ListByUser(ctx, userID, f)
}

func (s *AssignmentService) GetUserTask(ctx context.Context, userID, userTaskID string) (*model.UserTask, error) {
	return s.owned(ctx, userID, userTaskID)
}

func (s *AssignmentService) MarkTaskViewed(ctx context.Context, userID, userTaskID string) (*model.UserTask, error) {
	ut, err := s.owned(ctx, userID, userTaskID)
	if err != nil {
		return nil, err
	}
	if ut.IsViewed {
		return ut, nil
	}

	if err := s.repo.MarkViewed(ctx, ut.ID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, ut.ID)
}

// CompleteTask records the first completion. Completing an already
// completed task succeeds without touching the stored completion data.
func (s *AssignmentService) CompleteTask(ctx context.Context, userID, userTaskID string, completionData map[string]any) (*model.UserTask, error) {
	ut, err := s.owned(ctx, userID, userTaskID)
	if err != nil {
		return nil, err
	}
	if ut.IsCompleted {
		return ut, nil
	}

	if ut.Snapshot.ExecutionModel == constants.ModelForm {
		if missing := ut.Snapshot.MissingParameters(completionData); len(missing) > 0 {
			return nil, exceptions.Validation("missing required parameters: %s", strings.Join(missing, ", "))
		}
	}

	done, err := s.repo.Complete(ctx, ut.ID, completionData, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if done {
		s.log.Info().Str("user_task_id", ut.ID).Str("user_id", userID).Msg("task completed")
	}
	return s.repo.FindByID(ctx, ut.ID)
}

func (s *AssignmentService) ToggleTaskVisibility(ctx context.Context, userID, userTaskID string) (*model.UserTask, error) {
	ut, err := s.owned(ctx, userID, userTaskID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ToggleHidden(ctx, ut.ID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, ut.ID)
}

func (s *AssignmentService) owned(ctx context.Context, userID, userTaskID string) (*model.UserTask, error) {
	ut, err := s.repo.FindByID(ctx, userTaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrUserTaskNotFound
		}
		return nil, err
	}
	if ut.UserID != userID {
		return nil, exceptions.ErrNotOwner
	}
	return ut, nil
}
