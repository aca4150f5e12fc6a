package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

func TestAssignmentService_AssignIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	dt, ut := env.adoptAndAssign(t)

	assert.Equal(t, "Verify ID", ut.Snapshot.Title)
	assert.Equal(t, "onboarding", ut.Reason)
	assert.Equal(t, "d1", ut.DomainID)

	again, err := env.pipeline.Assignments.AssignTask(ctx, "u1", dt.ID, "admin", "")
	require.NoError(t, err)
	assert.Equal(t, ut.ID, again.ID)
	assert.Equal(t, "onboarding", again.Reason)
}

func TestAssignmentService_ConcurrentAssignmentsConverge(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	dt, ut := env.adoptAndAssign(t)
	env.access.grant("u2", "d1", constants.RoleMember)

	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := env.pipeline.Assignments.AssignTask(ctx, "u2", dt.ID, "admin", "")
			errs[i] = err
			if err == nil {
				ids[i] = got.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.NotEqual(t, ut.ID, ids[0])

	var n int64
	require.NoError(t, env.db.Model(&model.UserTask{}).Where("user_id = ?", "u2").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAssignmentService_RequiresMembership(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	dt, _ := env.adoptAndAssign(t)

	_, err := env.pipeline.Assignments.AssignTask(ctx, "u2", dt.ID, "admin", "")
	assert.ErrorIs(t, err, exceptions.ErrDomainAccessDenied)
	assert.True(t, exceptions.IsAuthorization(err))

	var n int64
	require.NoError(t, env.db.Model(&model.UserTask{}).Where("user_id = ?", "u2").Count(&n).Error)
	assert.Zero(t, n)

	env.access.grant("u2", "d1", constants.RoleMember)
	_, err = env.pipeline.Assignments.AssignTask(ctx, "u2", dt.ID, "outsider", "")
	assert.ErrorIs(t, err, exceptions.ErrDomainAccessDenied)
}

func TestAssignmentService_InactiveOrUnknownDomainTask(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	dt, _ := env.adoptAndAssign(t)

	_, err := env.pipeline.Assignments.AssignTask(ctx, "u1", "missing", "admin", "")
	assert.ErrorIs(t, err, exceptions.ErrDomainTaskNotFound)

	_, err = env.pipeline.Adoptions.DeactivateDomainTask(ctx, "d1", dt.ID, "admin")
	require.NoError(t, err)

	env.access.grant("u3", "d1", constants.RoleMember)
	_, err = env.pipeline.Assignments.AssignTask(ctx, "u3", dt.ID, "admin", "")
	assert.ErrorIs(t, err, exceptions.ErrDomainTaskNotFound)
}

func TestAssignmentService_SnapshotIsIndependentCopy(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	dt, ut := env.adoptAndAssign(t)

	dt.Snapshot.Checklist[0].Title = "mutated in memory"

	reloaded, err := env.pipeline.Assignments.GetUserTask(ctx, "u1", ut.ID)
	require.NoError(t, err)
	assert.Equal(t, "Collect document", reloaded.Snapshot.Checklist[0].Title)
}

func TestAssignmentService_CompleteTask(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, ut := env.adoptAndAssign(t)

	done, err := env.pipeline.Assignments.CompleteTask(ctx, "u1", ut.ID, map[string]any{"result": "verified"})
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "verified", done.CompletionData["result"])

	again, err := env.pipeline.Assignments.CompleteTask(ctx, "u1", ut.ID, map[string]any{"result": "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "verified", again.CompletionData["result"])
	assert.True(t, done.CompletedAt.Equal(*again.CompletedAt))
}

func TestAssignmentService_CompleteTaskOwnership(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, ut := env.adoptAndAssign(t)

	for _, data := range []map[string]any{nil, {}, {"result": "verified"}} {
		_, err := env.pipeline.Assignments.CompleteTask(ctx, "u2", ut.ID, data)
		assert.ErrorIs(t, err, exceptions.ErrNotOwner)
	}

	_, err := env.pipeline.Assignments.CompleteTask(ctx, "u1", "missing", nil)
	assert.ErrorIs(t, err, exceptions.ErrUserTaskNotFound)
}

func TestAssignmentService_CompleteFormRequiresParameters(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.access.grant("u1", "d1", constants.RoleMember)
	env.seedTemplate(t, formTemplate())

	dt, err := env.pipeline.Adoptions.AdoptTemplate(ctx, "d1", "t-form-1", model.Customizations{}, "u1")
	require.NoError(t, err)
	ut, err := env.pipeline.Assignments.AssignTask(ctx, "u1", dt.ID, "u1", "")
	require.NoError(t, err)

	_, err = env.pipeline.Assignments.CompleteTask(ctx, "u1", ut.ID, map[string]any{"notes": "n/a"})
	require.Error(t, err)
	assert.True(t, exceptions.IsValidation(err))
	assert.Contains(t, err.Error(), "result")

	done, err := env.pipeline.Assignments.CompleteTask(ctx, "u1", ut.ID, map[string]any{"result": "ok"})
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
}

func TestAssignmentService_ViewAndVisibility(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, ut := env.adoptAndAssign(t)

	viewed, err := env.pipeline.Assignments.MarkTaskViewed(ctx, "u1", ut.ID)
	require.NoError(t, err)
	assert.True(t, viewed.IsViewed)
	require.NotNil(t, viewed.ViewedAt)

	again, err := env.pipeline.Assignments.MarkTaskViewed(ctx, "u1", ut.ID)
	require.NoError(t, err)
	assert.True(t, viewed.ViewedAt.Equal(*again.ViewedAt))

	hidden, err := env.pipeline.Assignments.ToggleTaskVisibility(ctx, "u1", ut.ID)
	require.NoError(t, err)
	assert.True(t, hidden.IsHidden)

	visible, err := env.pipeline.Assignments.GetUserTasks(ctx, "u1", repository.UserTaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := env.pipeline.Assignments.GetUserTasks(ctx, "u1", repository.UserTaskFilter{IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	shown, err := env.pipeline.Assignments.ToggleTaskVisibility(ctx, "u1", ut.ID)
	require.NoError(t, err)
	assert.False(t, shown.IsHidden)

	_, err = env.pipeline.Assignments.ToggleTaskVisibility(ctx, "u2", ut.ID)
	assert.ErrorIs(t, err, exceptions.ErrNotOwner)
}

func TestAssignmentService_GetUserTasksFilters(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, ut := env.adoptAndAssign(t)

	_, err := env.pipeline.Assignments.CompleteTask(ctx, "u1", ut.ID, map[string]any{"result": "ok"})
	require.NoError(t, err)

	open, err := env.pipeline.Assignments.GetUserTasks(ctx, "u1", repository.UserTaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, open)

	withDone, err := env.pipeline.Assignments.GetUserTasks(ctx, "u1", repository.UserTaskFilter{IncludeCompleted: true, DomainID: "d1"})
	require.NoError(t, err)
	assert.Len(t, withDone, 1)

	otherDomain, err := env.pipeline.Assignments.GetUserTasks(ctx, "u1", repository.UserTaskFilter{IncludeCompleted: true, DomainID: "d9"})
	require.NoError(t, err)
	assert.Empty(t, otherDomain)
}
