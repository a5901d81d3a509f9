package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setado/internal/models"
)

func taskTitles(tasks []models.Task) []string {
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	return titles
}

func ptr[T any](v T) *T { return &v }

func findTask(t *testing.T, tasks []models.Task, id int64) models.Task {
	t.Helper()
	for _, task := range tasks {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %d not found", id)
	return models.Task{}
}

func TestCreateTask(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)

	due := time.Date(2026, 4, 2, 0, 0, 0, 0, time.Local)
	task, err := env.store.CreateTask(ctx, p.ID, " Buy milk ", -2, &due)
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, p.ID, task.ProjectID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, -2, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))
	assert.False(t, task.IsCompleted)
	assert.False(t, task.IsDeleted)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.DeletedAt)
}

func TestCreateTask_Validation(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)

	_, err = env.store.CreateTask(ctx, p.ID, "  ", 0, nil)
	assert.ErrorIs(t, err, models.ErrEmptyTitle)

	_, err = env.store.CreateTask(ctx, p.ID+100, "Buy milk", 0, nil)
	assert.ErrorIs(t, err, models.ErrProjectNotFound)
	assert.True(t, models.IsValidation(err))

	tasks, err := env.store.ListTasks(ctx, p.ID+100, true)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasks_OrderedByPriorityThenCreation(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)

	for _, tc := range []struct {
		title    string
		priority int
	}{
		{"five", 5},
		{"minus one", -1},
		{"zero", 0},
		{"zero again", 0},
	} {
		_, err := env.store.CreateTask(ctx, p.ID, tc.title, tc.priority, nil)
		require.NoError(t, err)
	}

	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"minus one", "zero", "zero again", "five"}, taskTitles(tasks))
}

func TestListTasks_SoftDeletedOnlyWhenRequested(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	keep, err := env.store.CreateTask(ctx, p.ID, "keep", 0, nil)
	require.NoError(t, err)
	drop, err := env.store.CreateTask(ctx, p.ID, "drop", 0, nil)
	require.NoError(t, err)

	require.NoError(t, env.store.DeleteTask(ctx, drop.ID))

	active, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, taskTitles(active))

	all, err := env.store.ListTasks(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "drop"}, taskTitles(all))

	deleted := findTask(t, all, drop.ID)
	assert.True(t, deleted.IsDeleted)
	assert.NotNil(t, deleted.DeletedAt)
	assert.False(t, findTask(t, all, keep.ID).IsDeleted)
}

func TestCompleteAndUncompleteTask(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	first, err := env.store.CreateTask(ctx, p.ID, "first", 1, nil)
	require.NoError(t, err)
	target, err := env.store.CreateTask(ctx, p.ID, "target", 1, nil)
	require.NoError(t, err)
	_, err = env.store.CreateTask(ctx, p.ID, "urgent", -3, nil)
	require.NoError(t, err)

	require.NoError(t, env.store.CompleteTask(ctx, target.ID))

	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	open, _ := models.PartitionCompleted(tasks)
	assert.Equal(t, []string{"urgent", "first"}, taskTitles(open))
	got := findTask(t, tasks, target.ID)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedAt)
	completedAt := *got.CompletedAt

	// Completing again keeps the original completion time.
	require.NoError(t, env.store.CompleteTask(ctx, target.ID))
	tasks, err = env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.True(t, completedAt.Equal(*findTask(t, tasks, target.ID).CompletedAt))

	require.NoError(t, env.store.UncompleteTask(ctx, target.ID))

	tasks, err = env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	got = findTask(t, tasks, target.ID)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)
	open, _ = models.PartitionCompleted(tasks)
	assert.Equal(t, []string{"urgent", "first", "target"}, taskTitles(open))
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestDeleteTask_IsIdempotent(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 0, nil)
	require.NoError(t, err)

	require.NoError(t, env.store.DeleteTask(ctx, task.ID))
	once, err := env.store.ListTasks(ctx, p.ID, true)
	require.NoError(t, err)

	require.NoError(t, env.store.DeleteTask(ctx, task.ID))
	twice, err := env.store.ListTasks(ctx, p.ID, true)
	require.NoError(t, err)

	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	require.NotNil(t, once[0].DeletedAt)
	assert.True(t, once[0].DeletedAt.Equal(*twice[0].DeletedAt))
	assert.Equal(t, once[0].IsDeleted, twice[0].IsDeleted)
}

func TestMutations_UnknownTaskIsNoOp(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, env.store.CompleteTask(ctx, 404))
	assert.NoError(t, env.store.UncompleteTask(ctx, 404))
	assert.NoError(t, env.store.DeleteTask(ctx, 404))
	assert.NoError(t, env.store.UpdateTask(ctx, 404, models.TaskUpdate{Priority: ptr(3)}))
}

func TestUpdateTask_DueDateRoundTrip(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 0, nil)
	require.NoError(t, err)

	due := time.Date(2026, 5, 17, 0, 0, 0, 0, time.Local)
	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{DueDate: &due}))

	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{ClearDueDate: true}))

	tasks, err = env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Nil(t, tasks[0].DueDate)
}

func TestUpdateTask_OnlySuppliedFieldsChange(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	due := time.Date(2026, 5, 17, 0, 0, 0, 0, time.Local)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 2, &due)
	require.NoError(t, err)

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{Priority: ptr(-1)}))

	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	got := tasks[0]
	assert.Equal(t, -1, got.Priority)
	assert.Equal(t, "Buy milk", got.Title)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{Title: ptr("Buy oat milk")}))
	tasks, err = env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", tasks[0].Title)
	assert.Equal(t, -1, tasks[0].Priority)
}

func TestUpdateTask_EmptyUpdateWritesNothing(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 0, nil)
	require.NoError(t, err)
	before := backupCount(t, env.backupDir)

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{}))
	assert.Equal(t, before, backupCount(t, env.backupDir))
}

func TestUpdateTask_RejectsEmptyTitle(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 0, nil)
	require.NoError(t, err)

	err = env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{Title: ptr(" "), Priority: ptr(9)})
	require.ErrorIs(t, err, models.ErrEmptyTitle)

	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Zero(t, tasks[0].Priority, "rejected update must not apply other fields")
}

func TestUpdateTask_CompletionKeepsTimestampsConsistent(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	task, err := env.store.CreateTask(ctx, p.ID, "Buy milk", 0, nil)
	require.NoError(t, err)

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{IsCompleted: ptr(true)}))
	tasks, err := env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.True(t, tasks[0].IsCompleted)
	assert.NotNil(t, tasks[0].CompletedAt)

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{IsCompleted: ptr(false)}))
	tasks, err = env.store.ListTasks(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, tasks[0].IsCompleted)
	assert.Nil(t, tasks[0].CompletedAt)

	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{IsDeleted: ptr(true)}))
	all, err := env.store.ListTasks(ctx, p.ID, true)
	require.NoError(t, err)
	require.NotNil(t, all[0].DeletedAt)
	deletedAt := *all[0].DeletedAt

	// Restoring through an update keeps the recorded deletion time.
	require.NoError(t, env.store.UpdateTask(ctx, task.ID, models.TaskUpdate{IsDeleted: ptr(false)}))
	all, err = env.store.ListTasks(ctx, p.ID, true)
	require.NoError(t, err)
	assert.False(t, all[0].IsDeleted)
	require.NotNil(t, all[0].DeletedAt)
	assert.True(t, deletedAt.Equal(*all[0].DeletedAt))
}

func TestListTasksDue_SingleProjectIgnoresArchiveFlag(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	due := env.clock.Now().AddDate(0, 0, 3)
	_, err = env.store.CreateTask(ctx, p.ID, "Water plants", 0, &due)
	require.NoError(t, err)
	_, err = env.store.CreateTask(ctx, p.ID, "No date", 0, nil)
	require.NoError(t, err)

	require.NoError(t, env.store.ArchiveProject(ctx, p.ID))

	tasks, err := env.store.ListTasksDue(ctx, &p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Water plants"}, taskTitles(tasks))

	all, err := env.store.ListTasksDue(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListTasksCompleted_MostRecentFirst(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	p, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)
	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		task, err := env.store.CreateTask(ctx, p.ID, title, 0, nil)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	require.NoError(t, env.store.CompleteTask(ctx, ids[1]))
	require.NoError(t, env.store.CompleteTask(ctx, ids[0]))
	require.NoError(t, env.store.CompleteTask(ctx, ids[2]))
	require.NoError(t, env.store.DeleteTask(ctx, ids[2]))

	tasks, err := env.store.ListTasksCompleted(ctx, &p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, taskTitles(tasks))
}

func TestScenario_HomeProject(t *testing.T) {
	env := newTestStore(t)
	ctx := context.Background()

	home, err := env.store.CreateProject(ctx, "Home", "")
	require.NoError(t, err)

	today := env.clock.Now()
	inTwoDays := today.AddDate(0, 0, 2)
	tomorrow := today.AddDate(0, 0, 1)

	milk, err := env.store.CreateTask(ctx, home.ID, "Buy milk", 0, &inTwoDays)
	require.NoError(t, err)
	_, err = env.store.CreateTask(ctx, home.ID, "Pay rent", -5, &tomorrow)
	require.NoError(t, err)

	due, err := env.store.ListTasksDue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pay rent", "Buy milk"}, taskTitles(due))

	require.NoError(t, env.store.CompleteTask(ctx, milk.ID))

	completed, err := env.store.ListTasksCompleted(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, taskTitles(completed))

	tasks, err := env.store.ListTasks(ctx, home.ID, false)
	require.NoError(t, err)
	open, done := models.PartitionCompleted(tasks)
	assert.Equal(t, []string{"Pay rent"}, taskTitles(open))
	assert.Equal(t, []string{"Buy milk"}, taskTitles(done))

	due, err = env.store.ListTasksDue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pay rent"}, taskTitles(due))

	require.NoError(t, env.store.ArchiveProject(ctx, home.ID))

	due, err = env.store.ListTasksDue(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, due)

	completed, err = env.store.ListTasksCompleted(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, completed)
}
