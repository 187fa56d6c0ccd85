package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")

	created := f.project(t, owner, "P1")
	assert.Equal(t, owner.ID, created.UserID)
	assert.NotZero(t, created.ID)

	got, err := f.projects.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "P1", got.Name)
	assert.Equal(t, "P1 description", got.Description)

	assert.Equal(t, []string{mq.RoutingProjectCreated}, f.publisher.keys())
}

func TestProjectService_ForeignProjectIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")
	other := f.user(t, "b@example.com")
	project := f.project(t, owner, "P1")

	_, err := f.projects.Get(ctx, other, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.projects.Update(ctx, other, project.ID, ProjectInput{Name: "stolen", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.projects.Delete(ctx, other, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// untouched
	got, err := f.projects.Get(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "P1", got.Name)
}

func TestProjectService_MissingProject(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "a@example.com")

	_, err := f.projects.Get(context.Background(), owner, 999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")
	project := f.project(t, owner, "P1")

	require.NoError(t, f.projects.Update(ctx, owner, project.ID, ProjectInput{Name: "Renamed", Description: "New"}))

	got, err := f.projects.Get(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "New", got.Description)
	assert.Equal(t, owner.ID, got.UserID)
}

func TestProjectService_DeleteCascadesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")
	project := f.project(t, owner, "P1")
	keep := f.project(t, owner, "P2")

	f.task(t, owner, project.ID, "T1", model.TaskStatusPending, "2024-01-05")
	f.task(t, owner, project.ID, "T2", model.TaskStatusDone, "2024-01-06")
	f.task(t, owner, keep.ID, "T3", model.TaskStatusPending, "2024-01-07")

	require.NoError(t, f.projects.Delete(ctx, owner, project.ID))

	_, err := f.projects.Get(ctx, owner, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int64
	require.NoError(t, f.db.Model(&model.Task{}).Where("project_id = ?", project.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	var kept int64
	require.NoError(t, f.db.Model(&model.Task{}).Where("project_id = ?", keep.ID).Count(&kept).Error)
	assert.Equal(t, int64(1), kept)

	assert.Contains(t, f.publisher.keys(), mq.RoutingProjectDeleted)
}

func TestProjectService_ListIsScopedAndPaginated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")
	other := f.user(t, "b@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < PageSize+2; i++ {
		p := model.Project{
			UserID:      owner.ID,
			Name:        fmt.Sprintf("P%02d", i),
			Description: "d",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, f.db.Create(&p).Error)
	}
	f.project(t, other, "foreign")

	first, total, err := f.projects.List(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(PageSize+2), total)
	require.Len(t, first, PageSize)
	assert.Equal(t, fmt.Sprintf("P%02d", PageSize+1), first[0].Name, "newest first")

	second, _, err := f.projects.List(ctx, owner, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "P00", second[1].Name)

	for _, p := range append(first, second...) {
		assert.Equal(t, owner.ID, p.UserID)
	}

	empty, total, err := f.projects.List(ctx, f.user(t, "c@example.com"), 1)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, empty)
}

func TestClampPage(t *testing.T) {
	cases := map[int]int{
		-5:          1,
		0:           1,
		1:           1,
		42:          42,
		MaxPage:     MaxPage,
		math.MaxInt: MaxPage,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClampPage(in), "page=%d", in)
	}
}

func TestProjectService_ListHugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")
	f.project(t, owner, "P1")

	projects, total, err := f.projects.List(ctx, owner, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, int64(1), total)
}

func TestProjectService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = fmt.Errorf("broker down")
	owner := f.user(t, "a@example.com")

	project, err := f.projects.Create(context.Background(), owner, ProjectInput{Name: "P1", Description: "d"})
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
}
