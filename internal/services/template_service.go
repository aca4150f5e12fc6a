package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"task-lifecycle.com/task-lifecycle/internal/cache"
	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

// TemplateService is the template registry. Reads go through the cache and
// every write invalidates the affected entries. A reader that missed the
// cache before a write can still repopulate it with the old row; that entry
// lives until the TTL expires.
type TemplateService struct {
	repo  *repository.TemplateRepository
	cache cache.TemplateCache
	log   zerolog.Logger
}

func NewTemplateService(
	repo *repository.TemplateRepository,
	templateCache cache.TemplateCache,
	log zerolog.Logger,
) *TemplateService {
	return &TemplateService{
		repo:  repo,
		cache: templateCache,
		log:   log.With().Str("component", "template_registry").Logger(),
	}
}

// GetTemplate resolves ref as an internal id or a business key.
func (s *TemplateService) GetTemplate(ctx context.Context, ref string) (*model.Template, error) {
	if ref == "" {
		return nil, exceptions.ErrTemplateNotFound
	}

	if t, ok := s.cache.Get(ctx, ref); ok {
		return t, nil
	}

	t, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrTemplateNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, t); err != nil {
		s.log.Warn().Err(err).Str("template_id", t.ID).Msg("failed to cache template")
	}
	return t, nil
}

func (s *TemplateService) GetActiveTemplate(ctx context.Context, ref string) (*model.Template, error) {
	t, err := s.GetTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, exceptions.ErrTemplateNotFound
	}
	return t, nil
}

func (s *TemplateService) ListActiveTemplates(ctx context.Context, f repository.TemplateFilter) ([]model.Template, error) {
	if f.ExecutionModel != "" && !f.ExecutionModel.Valid() {
		return nil, exceptions.Validation("unknown execution model %q", f.ExecutionModel)
	}
	return s.repo.ListActive(ctx, f)
}

func (s *TemplateService) Deactivate(ctx context.Context, ref string) error {
	t, err := s.GetTemplate(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, t.ID, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return exceptions.ErrTemplateNotFound
		}
		return err
	}

	s.invalidate(ctx, t)
	s.log.Info().Str("template_id", t.ID).Str("key", t.Key).Msg("template deactivated")
	return nil
}

// UpsertTemplate is the platform-admin write path. Existing templates are
// matched by business key and keep their id. A nil isActive means active on
// create and the stored value on update; any caller-supplied id is ignored.
func (s *TemplateService) UpsertTemplate(ctx context.Context, t *model.Template, isActive *bool) (*model.Template, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByKey(ctx, t.Key)
	switch {
	case err == nil:
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
		t.IsActive = existing.IsActive
		if isActive != nil {
			t.IsActive = *isActive
		}
		if err := s.repo.Save(ctx, t); err != nil {
			return nil, s.writeError(err)
		}
		s.invalidate(ctx, existing)
	case errors.Is(err, repository.ErrNotFound):
		t.ID = ""
		t.IsActive = isActive == nil || *isActive
		if err := s.repo.Create(ctx, t); err != nil {
			return nil, s.writeError(err)
		}
	default:
		return nil, err
	}

	s.invalidate(ctx, t)
	s.log.Info().Str("template_id", t.ID).Str("key", t.Key).Bool("is_active", t.IsActive).Msg("template saved")
	return t, nil
}

// writeError reports a lost create race on the same key as a conflict.
func (s *TemplateService) writeError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return exceptions.ErrConcurrentUpdate
	}
	return err
}

func (s *TemplateService) invalidate(ctx context.Context, t *model.Template) {
	if err := s.cache.Invalidate(ctx, t); err != nil {
		s.log.Warn().Err(err).Str("template_id", t.ID).Msg("failed to invalidate template cache")
	}
}

func validateTemplate(t *model.Template) error {
	t.Key = strings.TrimSpace(t.Key)
	t.Name = strings.TrimSpace(t.Name)
	if t.Key == "" {
		return exceptions.Validation("template key is required")
	}
	if t.Name == "" {
		return exceptions.Validation("template name is required")
	}
	if !t.ExecutionModel.Valid() {
		return exceptions.Validation("unknown execution model %q", t.ExecutionModel)
	}
	if t.Scope == "" {
		t.Scope = constants.ScopeGlobal
	}
	switch t.Scope {
	case constants.ScopeGlobal:
		t.ScopeDomainID = ""
	case constants.ScopeDomain:
		if t.ScopeDomainID == "" {
			return exceptions.Validation("domain-scoped template needs scope_domain_id")
		}
	default:
		return exceptions.Validation("unknown template scope %q", t.Scope)
	}
	for _, p := range t.RequiredParameters {
		if p.Name == "" {
			return exceptions.Validation("required parameter without a name")
		}
	}
	return nil
}
