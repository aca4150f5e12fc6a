package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestDomainTaskRepository_OneActiveAdoption(t *testing.T) {
	repo := NewDomainTaskRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	first := &model.DomainTask{Key: "d1:k", DomainID: "d1", TemplateID: "t1", AdoptedBy: "a", AdoptedAt: now}
	require.NoError(t, repo.Create(ctx, first))

	dup := &model.DomainTask{Key: "d1:k", DomainID: "d1", TemplateID: "t1", AdoptedBy: "a", AdoptedAt: now}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	changed, err := repo.Deactivate(ctx, first.ID, "a", now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Deactivate(ctx, first.ID, "a", now)
	require.NoError(t, err)
	assert.False(t, changed)

	again := &model.DomainTask{Key: "d1:k", DomainID: "d1", TemplateID: "t1", AdoptedBy: "a", AdoptedAt: now.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, again))

	active, err := repo.FindActive(ctx, "d1", "t1")
	require.NoError(t, err)
	assert.Equal(t, again.ID, active.ID)

	ids, err := repo.ActiveTemplateIDs(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids)
}

func TestUserTaskRepository_UniqueAssignment(t *testing.T) {
	repo := NewUserTaskRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.UserTask{UserID: "u1", DomainTaskID: "dt1", DomainID: "d1", AssignedAt: time.Now()}))
	err := repo.Create(ctx, &model.UserTask{UserID: "u1", DomainTaskID: "dt1", DomainID: "d1", AssignedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.Create(ctx, &model.UserTask{UserID: "u2", DomainTaskID: "dt1", DomainID: "d1", AssignedAt: time.Now()}))

	counts, err := repo.CountByDomainTasks(ctx, []string{"dt1", "dt2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"dt1": 2}, counts)
}

func TestExecutionRepository_GuardedUpdates(t *testing.T) {
	repo := NewExecutionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	ex := &model.Execution{UserID: "u1", DomainID: "d1", DomainTaskID: "dt1", AssignedAt: now}
	require.NoError(t, repo.Create(ctx, ex))
	assert.Equal(t, constants.StatusAssigned, ex.Status)

	moved, err := repo.Transition(ctx, ex.ID, constants.StatusInProgress, constants.StatusCompleted, now)
	require.NoError(t, err)
	assert.False(t, moved)

	started, err := repo.MarkStarted(ctx, ex.ID, now)
	require.NoError(t, err)
	assert.True(t, started)

	stale := *ex
	ex.MessageCount = 1
	assert.ErrorIs(t, repo.RecordMessage(ctx, ex), ErrOptimisticLock, "MarkStarted bumped the version")

	fresh, err := repo.FindByID(ctx, ex.ID)
	require.NoError(t, err)
	fresh.MessageCount = 1
	require.NoError(t, repo.RecordMessage(ctx, fresh))
	assert.ErrorIs(t, repo.RecordMessage(ctx, &stale), ErrOptimisticLock)

	require.NoError(t, repo.SoftDelete(ctx, ex.ID))
	_, err = repo.FindByID(ctx, ex.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageRepository_SeqIsUniqueAndPaged(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	ctx := context.Background()

	for seq := 1; seq <= 4; seq++ {
		require.NoError(t, repo.Create(ctx, &model.Message{ExecutionID: "ex1", Seq: seq, Role: constants.RoleUser, Content: "m"}))
	}
	err := repo.Create(ctx, &model.Message{ExecutionID: "ex1", Seq: 2, Role: constants.RoleUser, Content: "dup"})
	assert.ErrorIs(t, err, ErrDuplicate)

	page, err := repo.List(ctx, "ex1", 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].Seq)
	assert.Equal(t, 3, page[1].Seq)

	_, err = repo.List(ctx, "ex1", 0, 0)
	assert.Error(t, err)
}
