package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/cache"
	config "task-lifecycle.com/task-lifecycle/internal/configs"
	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
)

// fakeAccess is an in-memory membership table.
type fakeAccess struct {
	mu      sync.Mutex
	members map[string]constants.DomainRole
}

func newFakeAccess() *fakeAccess {
	return &fakeAccess{members: make(map[string]constants.DomainRole)}
}

func (f *fakeAccess) grant(userID, domainID string, role constants.DomainRole) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[userID+"@"+domainID] = role
}

func (f *fakeAccess) CanAssign(_ context.Context, userID, domainID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.members[userID+"@"+domainID]
	return ok, nil
}

func (f *fakeAccess) IsDomainAdmin(_ context.Context, userID, domainID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[userID+"@"+domainID] == constants.RoleAdmin, nil
}

type testEnv struct {
	db       *gorm.DB
	pipeline *Pipeline
	access   *fakeAccess
	cache    *cache.MemoryTemplateCache
	metrics  *Metrics
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.NewDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	access := newFakeAccess()
	templateCache := cache.NewMemoryTemplateCache(time.Minute)
	metrics := NewMetrics(nil)

	return &testEnv{
		db:       db,
		pipeline: NewPipeline(db, templateCache, access, metrics, zerolog.Nop()),
		access:   access,
		cache:    templateCache,
		metrics:  metrics,
	}
}

func (e *testEnv) seedTemplate(t *testing.T, tmpl *model.Template) *model.Template {
	t.Helper()

	if tmpl.ExecutionModel == "" {
		tmpl.ExecutionModel = constants.ModelSOP
	}
	active := true

	saved, err := e.pipeline.Templates.UpsertTemplate(context.Background(), tmpl, &active)
	require.NoError(t, err)
	return saved
}

func sopTemplate() *model.Template {
	return &model.Template{
		Key:                        "t-sop-1",
		Name:                       "Verify ID",
		Description:                "Check the customer's identity document",
		Category:                   "compliance",
		ExecutionModel:             constants.ModelSOP,
		SystemPrompt:               "You guide an operator through ID verification.",
		IntroMessage:               "Let's verify the document.",
		StandardOperatingProcedure: "1. Ask for the document. 2. Compare photo.",
		Checklist: []model.ChecklistStep{
			{Order: 1, Title: "Collect document", Type: "action"},
			{Order: 2, Title: "Compare photo", Type: "check"},
		},
	}
}

func formTemplate() *model.Template {
	return &model.Template{
		Key:            "t-form-1",
		Name:           "Incident report",
		ExecutionModel: constants.ModelForm,
		RequiredParameters: []model.Parameter{
			{Name: "result", Label: "Result", Type: "text", Required: true},
			{Name: "notes", Label: "Notes", Type: "text"},
		},
	}
}

// adoptAndAssign walks a template through adoption and assignment for u1 in d1.
func (e *testEnv) adoptAndAssign(t *testing.T) (*model.DomainTask, *model.UserTask) {
	t.Helper()
	ctx := context.Background()

	e.access.grant("admin", "d1", constants.RoleAdmin)
	e.access.grant("u1", "d1", constants.RoleMember)
	tmpl := e.seedTemplate(t, sopTemplate())

	dt, err := e.pipeline.Adoptions.AdoptTemplate(ctx, "d1", tmpl.ID, model.Customizations{}, "admin")
	require.NoError(t, err)

	ut, err := e.pipeline.Assignments.AssignTask(ctx, "u1", dt.ID, "admin", "onboarding")
	require.NoError(t, err)

	return dt, ut
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
