package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

const (
	maxAppendAttempts = 5

	DefaultMessageLimit = 50
	MaxMessageLimit     = 500
)

type AppendMessageInput struct {
	ExecutionID     string
	Role            constants.MessageRole
	Content         string
	UserID          string
	ParentMessageID string
}

// MessagePage selects Limit messages. Before is a message id; when set, the
// page holds the messages immediately preceding it.
type MessagePage struct {
	Limit  int
	Before string
}

// MessageService is the append-only conversation ledger. Appending the first
// message of an execution starts it.
type MessageService struct {
	repo       *repository.MessageRepository
	executions *ExecutionService
	tx         *repository.TxManager
	metrics    *Metrics
	log        zerolog.Logger
	now        func() time.Time
}

func NewMessageService(
	repo *repository.MessageRepository,
	executions *ExecutionService,
	tx *repository.TxManager,
	metrics *Metrics,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{
		repo:       repo,
		executions: executions,
		tx:         tx,
		metrics:    metrics,
		log:        log.With().Str("component", "message_ledger").Logger(),
		now:        time.Now,
	}
}

func (s *MessageService) AppendMessage(ctx context.Context, in AppendMessageInput) (*model.Message, error) {
	if !in.Role.Valid() {
		return nil, exceptions.Validation("unknown message role %q", in.Role)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, exceptions.Validation("message content is required")
	}

	ex, err := s.executions.GetExecution(ctx, in.ExecutionID)
	if err != nil {
		return nil, err
	}
	if ex.UserID != in.UserID {
		return nil, exceptions.ErrNotOwner
	}

	if in.ParentMessageID != "" {
		parent, err := s.repo.FindByID(ctx, in.ParentMessageID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if parent == nil || parent.ExecutionID != ex.ID {
			return nil, exceptions.Validation("parent message %s is not part of execution %s", in.ParentMessageID, ex.ID)
		}
	}

	for attempt := 1; ; attempt++ {
		msg, err := s.tryAppend(ctx, in)
		if err == nil {
			s.metrics.Messages.WithLabelValues(string(in.Role)).Inc()
			return msg, nil
		}
		if !errors.Is(err, repository.ErrOptimisticLock) && !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}

		s.metrics.WriteRaces.WithLabelValues("message").Inc()
		if attempt == maxAppendAttempts {
			s.log.Warn().Str("execution_id", in.ExecutionID).Int("attempts", attempt).Msg("message append gave up")
			return nil, exceptions.ErrConcurrentUpdate
		}
	}
}

// tryAppend writes the message and the execution counters in one
// transaction, starting the execution when this is its first message.
func (s *MessageService) tryAppend(ctx context.Context, in AppendMessageInput) (*model.Message, error) {
	var msg *model.Message

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		executions := s.executions.repo.WithTx(tx)
		messages := s.repo.WithTx(tx)

		ex, err := executions.FindByID(ctx, in.ExecutionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return exceptions.ErrExecutionNotFound
			}
			return err
		}
		if ex.Status.IsTerminal() {
			return exceptions.ErrExecutionClosed
		}

		createdAt := s.now().UTC()
		if ex.LastMessageAt != nil && ex.LastMessageAt.After(createdAt) {
			createdAt = *ex.LastMessageAt
		}

		msg = &model.Message{
			ExecutionID: ex.ID,
			Seq:         ex.MessageCount + 1,
			Role:        in.Role,
			Content:     in.Content,
			UserID:      in.UserID,
			CreatedAt:   createdAt,
		}
		if in.ParentMessageID != "" {
			parent := in.ParentMessageID
			msg.ParentMessageID = &parent
		}
		if err := messages.Create(ctx, msg); err != nil {
			return err
		}

		ex.MessageCount = msg.Seq
		ex.LastMessageAt = &createdAt
		if err := executions.RecordMessage(ctx, ex); err != nil {
			return err
		}

		if msg.Seq == 1 {
			if _, err := s.executions.advanceOnFirstMessage(ctx, executions, ex.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessages returns a page of messages in ascending order.
func (s *MessageService) GetMessages(ctx context.Context, executionID string, page MessagePage) ([]model.Message, error) {
	limit := page.Limit
	switch {
	case limit == 0:
		limit = DefaultMessageLimit
	case limit < 0 || limit > MaxMessageLimit:
		return nil, exceptions.ErrInvalidLimit
	}

	if _, err := s.executions.GetExecution(ctx, executionID); err != nil {
		return nil, err
	}

	beforeSeq := 0
	if page.Before != "" {
		cursor, err := s.repo.FindByID(ctx, page.Before)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if cursor == nil || cursor.ExecutionID != executionID {
			return nil, exceptions.Validation("cursor %s is not a message of execution %s", page.Before, executionID)
		}
		beforeSeq = cursor.Seq
	}

	return s.repo.List(ctx, executionID, beforeSeq, limit)
}

// UpdateFeedback sets the feedback of a message in the caller's execution.
func (s *MessageService) UpdateFeedback(ctx context.Context, userID, messageID string, fb model.Feedback) (*model.Message, error) {
	if fb.Rating != constants.RatingUp && fb.Rating != constants.RatingDown {
		return nil, exceptions.Validation("rating must be %q or %q", constants.RatingUp, constants.RatingDown)
	}

	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrMessageNotFound
		}
		return nil, err
	}

	ex, err := s.executions.GetExecution(ctx, msg.ExecutionID)
	if err != nil {
		return nil, err
	}
	if ex.UserID != userID {
		return nil, exceptions.ErrNotOwner
	}

	fb.Comment = strings.TrimSpace(fb.Comment)
	fb.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateFeedback(ctx, msg.ID, &fb); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrMessageNotFound
		}
		return nil, err
	}

	msg.Feedback = &fb
	return msg, nil
}
