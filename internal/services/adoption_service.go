package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

// AdoptionService copies templates into a domain as frozen DomainTask
// snapshots. Adoption is idempotent per (domain, template) while active.
type AdoptionService struct {
	templates *TemplateService
	repo      *repository.DomainTaskRepository
	userTasks *repository.UserTaskRepository
	access    AccessChecker
	metrics   *Metrics
	log       zerolog.Logger
	now       func() time.Time
}

func NewAdoptionService(
	templates *TemplateService,
	repo *repository.DomainTaskRepository,
	userTasks *repository.UserTaskRepository,
	access AccessChecker,
	metrics *Metrics,
	log zerolog.Logger,
) *AdoptionService {
	return &AdoptionService{
		templates: templates,
		repo:      repo,
		userTasks: userTasks,
		access:    access,
		metrics:   metrics,
		log:       log.With().Str("component", "adoption").Logger(),
		now:       time.Now,
	}
}

// ListAdoptableTemplates returns active templates visible to the domain that
// it has not adopted yet. The actor must belong to the domain.
func (s *AdoptionService) ListAdoptableTemplates(ctx context.Context, domainID, actorID string) ([]model.Template, error) {
	if domainID == "" {
		return nil, exceptions.Validation("domain id is required")
	}
	if err := requireAccess(ctx, s.access, actorID, domainID); err != nil {
		return nil, err
	}

	templates, err := s.templates.ListActiveTemplates(ctx, repository.TemplateFilter{DomainID: domainID})
	if err != nil {
		return nil, err
	}

	adopted, err := s.repo.ActiveTemplateIDs(ctx, domainID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(adopted))
	for _, id := range adopted {
		taken[id] = struct{}{}
	}

	adoptable := make([]model.Template, 0, len(templates))
	for _, t := range templates {
		if _, ok := taken[t.ID]; !ok {
			adoptable = append(adoptable, t)
		}
	}
	return adoptable, nil
}

// AdoptTemplate returns the domain's active adoption of the template,
// creating it from a fresh snapshot when none exists.
func (s *AdoptionService) AdoptTemplate(
	ctx context.Context,
	domainID, templateRef string,
	customizations model.Customizations,
	actorID string,
) (*model.DomainTask, error) {
	if domainID == "" || templateRef == "" || actorID == "" {
		return nil, exceptions.Validation("domain id, template and actor are required")
	}
	if customizations.Priority != "" && !customizations.Priority.Valid() {
		return nil, exceptions.Validation("unknown priority %q", customizations.Priority)
	}

	if err := requireAccess(ctx, s.access, actorID, domainID); err != nil {
		return nil, err
	}

	tmpl, err := s.templates.GetActiveTemplate(ctx, templateRef)
	if err != nil {
		return nil, err
	}
	if !tmpl.VisibleTo(domainID) {
		return nil, exceptions.ErrTemplateNotFound
	}

	existing, err := s.repo.FindActive(ctx, domainID, tmpl.ID)
	if err == nil {
		s.metrics.Adoptions.WithLabelValues("existing").Inc()
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	snapshot := model.SnapshotFromTemplate(tmpl, now)
	snapshot.Apply(customizations)
	if err := snapshot.Validate(); err != nil {
		return nil, exceptions.Validation("%s", err.Error())
	}

	dt := &model.DomainTask{
		Key:        domainID + ":" + tmpl.Key,
		DomainID:   domainID,
		TemplateID: tmpl.ID,
		Snapshot:   snapshot,
		AdoptedBy:  actorID,
		AdoptedAt:  now,
	}

	if err := s.repo.Create(ctx, dt); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		s.metrics.WriteRaces.WithLabelValues("domain_task").Inc()
		winner, err := s.repo.FindActive(ctx, domainID, tmpl.ID)
		if err != nil {
			return nil, err
		}
		s.metrics.Adoptions.WithLabelValues("existing").Inc()
		return winner, nil
	}

	s.metrics.Adoptions.WithLabelValues("created").Inc()
	s.log.Info().
		Str("domain_id", domainID).
		Str("template_id", tmpl.ID).
		Str("domain_task_id", dt.ID).
		Str("actor_id", actorID).
		Msg("template adopted")
	return dt, nil
}

// GetDomainTask resolves ref as an id or a domain task business key.
func (s *AdoptionService) GetDomainTask(ctx context.Context, ref string) (*model.DomainTask, error) {
	dt, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrDomainTaskNotFound
		}
		return nil, err
	}
	return dt, nil
}

// ListDomainTasks lists the domain's adoptions with their assignment counts.
func (s *AdoptionService) ListDomainTasks(ctx context.Context, domainID string, includeInactive bool, actorID string) ([]model.DomainTask, error) {
	if domainID == "" {
		return nil, exceptions.Validation("domain id is required")
	}
	if err := requireAccess(ctx, s.access, actorID, domainID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByDomain(ctx, domainID, includeInactive)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	counts, err := s.userTasks.CountByDomainTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].AssignmentCount = counts[tasks[i].ID]
	}
	return tasks, nil
}

// DeactivateDomainTask retires an adoption. Existing assignments and
// executions keep their snapshots; a later adoption starts a new record.
func (s *AdoptionService) DeactivateDomainTask(ctx context.Context, domainID, domainTaskID, actorID string) (*model.DomainTask, error) {
	ok, err := s.access.IsDomainAdmin(ctx, actorID, domainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exceptions.ErrDomainAdminRequired
	}

	dt, err := s.GetDomainTask(ctx, domainTaskID)
	if err != nil {
		return nil, err
	}
	if dt.DomainID != domainID {
		return nil, exceptions.ErrDomainTaskNotFound
	}

	changed, err := s.repo.Deactivate(ctx, dt.ID, actorID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Info().Str("domain_task_id", dt.ID).Str("actor_id", actorID).Msg("domain task deactivated")
	}

	return s.GetDomainTask(ctx, dt.ID)
}
