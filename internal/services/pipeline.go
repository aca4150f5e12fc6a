package services

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/cache"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

// Pipeline bundles the five lifecycle components over one database.
type Pipeline struct {
	Templates   *TemplateService
	Adoptions   *AdoptionService
	Assignments *AssignmentService
	Executions  *ExecutionService
	Messages    *MessageService
	Memberships *repository.DomainMembershipRepository
}

// NewPipeline wires the components. A nil access checker falls back to
// membership records stored in db.
func NewPipeline(
	db *gorm.DB,
	templateCache cache.TemplateCache,
	access AccessChecker,
	metrics *Metrics,
	log zerolog.Logger,
) *Pipeline {
	templateRepo := repository.NewTemplateRepository(db)
	domainTaskRepo := repository.NewDomainTaskRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	membershipRepo := repository.NewDomainMembershipRepository(db)
	txManager := repository.NewTxManager(db)

	if access == nil {
		access = NewMembershipChecker(membershipRepo)
	}

	templates := NewTemplateService(templateRepo, templateCache, log)
	executions := NewExecutionService(
		executionRepo, messageRepo, domainTaskRepo, userTaskRepo, txManager, access, metrics, log,
	)

	return &Pipeline{
		Templates:   templates,
		Adoptions:   NewAdoptionService(templates, domainTaskRepo, userTaskRepo, access, metrics, log),
		Assignments: NewAssignmentService(domainTaskRepo, userTaskRepo, access, metrics, log),
		Executions:  executions,
		Messages:    NewMessageService(messageRepo, executions, txManager, metrics, log),
		Memberships: membershipRepo,
	}
}

// SetClock replaces the time source of every component.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.Adoptions.now = now
	p.Assignments.now = now
	p.Executions.now = now
	p.Messages.now = now
}
