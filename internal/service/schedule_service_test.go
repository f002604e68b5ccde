package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/repository"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

func TestExpandDatesWeekly(t *testing.T) {
	dates, err := ExpandDates(models.RecurrenceWeekly, "2024-02-26", nil, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-26", "2024-03-04", "2024-03-11", "2024-03-18"}, dates)
}

func TestExpandDatesRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		mode  models.RecurrenceMode
		date  string
		dates []string
		weeks int
	}{
		{name: "once without date", mode: models.RecurrenceOnce},
		{name: "custom duplicates", mode: models.RecurrenceCustom, dates: []string{"2024-01-01", "2024-01-01"}},
		{name: "custom invalid", mode: models.RecurrenceCustom, dates: []string{"2024-13-01"}},
		{name: "weekly zero", mode: models.RecurrenceWeekly, date: "2024-01-01", weeks: 0},
		{name: "weekly too many", mode: models.RecurrenceWeekly, date: "2024-01-01", weeks: 105},
		{name: "weekly bad date", mode: models.RecurrenceWeekly, date: "01/01/2024", weeks: 2},
		{name: "unknown mode", mode: "daily", date: "2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExpandDates(tc.mode, tc.date, tc.dates, tc.weeks)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func newScheduleFixture(t *testing.T) (*ScheduleService, *repository.CollectionRepository, *removedFiles) {
	t.Helper()
	repo := newTestRepo(t)
	seed(t, repo, models.Collections{
		Classes: []models.Class{
			{ID: "c1", Name: "Art", Color: "#112233", Subgroups: []models.Subgroup{{ID: "g1", Name: "A"}, {ID: "g2", Name: "B"}}},
			{ID: "old", Name: "Old", Color: "#000000", Subgroups: []models.Subgroup{}, Archived: true},
		},
	})
	files := &removedFiles{}
	return NewScheduleService(repo, files, nil, nil), repo, files
}

func TestCreateLessonsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newScheduleFixture(t)

	plans, err := svc.Create(ctx, dto.CreateLessonsRequest{ClassID: "c1", Mode: models.RecurrenceWeekly, Date: "2024-03-04", Weeks: 3})
	require.NoError(t, err)
	require.Len(t, plans, 3)
	for _, plan := range plans {
		assert.Equal(t, "Lesson Art", plan.Title)
		assert.Equal(t, models.DefaultLessonTime, plan.Time)
		assert.True(t, plan.SubgroupID.IsAll())
		assert.NotNil(t, plan.Files)
	}
	assert.Equal(t, "2024-03-18", plans[2].Date)
}

func TestCreateLessonsValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newScheduleFixture(t)

	_, err := svc.Create(ctx, dto.CreateLessonsRequest{Mode: models.RecurrenceOnce, Date: "2024-03-04"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, dto.CreateLessonsRequest{ClassID: "old", Mode: models.RecurrenceOnce, Date: "2024-03-04"})
	assert.ErrorIs(t, err, appErrors.ErrClassArchived)

	_, err = svc.Create(ctx, dto.CreateLessonsRequest{ClassID: "ghost", Mode: models.RecurrenceOnce, Date: "2024-03-04"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(ctx, dto.CreateLessonsRequest{ClassID: "c1", SubgroupID: "g9", Mode: models.RecurrenceOnce, Date: "2024-03-04"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, dto.CreateLessonsRequest{ClassID: "c1", Mode: models.RecurrenceOnce, Date: "2024-03-04", Time: "25:00"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	plans, err := repo.LoadLessonPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestLessonsOnDateFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newScheduleFixture(t)
	seed(t, repo, models.Collections{LessonPlans: []models.LessonPlan{
		{ID: "late", Date: "2024-03-04", Time: "14:00", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
		{ID: "untimed", Date: "2024-03-04", ClassID: "c1"},
		{ID: "early", Date: "2024-03-04", Time: "08:30", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g2")},
		{ID: "archived", Date: "2024-03-04", Time: "09:00", ClassID: "old"},
		{ID: "orphan", Date: "2024-03-04", Time: "10:00", ClassID: "deleted"},
		{ID: "otherday", Date: "2024-03-05", Time: "07:00", ClassID: "c1"},
	}})

	plans, err := svc.LessonsOnDate(ctx, "2024-03-04", models.LessonFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"untimed", "early", "orphan", "late"}, planIDs(plans))

	plans, err = svc.LessonsOnDate(ctx, "2024-03-04", models.LessonFilter{ClassID: "c1", SubgroupID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"untimed", "late"}, planIDs(plans))

	plans, err = svc.LessonsOnDate(ctx, "2024-03-04", models.LessonFilter{Archived: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"archived", "orphan"}, planIDs(plans))

	plans, err = svc.LessonsInRange(ctx, "2024-03-01", "2024-03-31", models.LessonFilter{ClassID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"untimed", "early", "late", "otherday"}, planIDs(plans))

	_, err = svc.LessonsInRange(ctx, "2024-03-31", "2024-03-01", models.LessonFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDeleteFutureStaysInSeries(t *testing.T) {
	plans := []models.LessonPlan{
		{ID: "a1", Date: "2024-03-04", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
		{ID: "a2", Date: "2024-03-11", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
		{ID: "a3", Date: "2024-03-18", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
		{ID: "b2", Date: "2024-03-11", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g2")},
		{ID: "all", Date: "2024-03-25", ClassID: "c1"},
		{ID: "x", Date: "2024-03-25", ClassID: "c2", SubgroupID: models.SpecificSubgroup("g1")},
		{ID: "a0", Date: "2024-02-26", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
	}

	_, single, ok := SelectForDeletion(plans, "a2", models.DeleteSingle)
	require.True(t, ok)
	assert.Equal(t, []string{"a2"}, planIDs(single))

	kept, future, ok := SelectForDeletion(plans, "a2", models.DeleteFuture)
	require.True(t, ok)
	assert.Equal(t, []string{"a2", "a3"}, planIDs(future))
	assert.Equal(t, []string{"a1", "b2", "all", "x", "a0"}, planIDs(kept))

	_, _, ok = SelectForDeletion(plans, "missing", models.DeleteFuture)
	assert.False(t, ok)
}

func TestDeleteAndUpdateLesson(t *testing.T) {
	ctx := context.Background()
	svc, repo, files := newScheduleFixture(t)
	seed(t, repo, models.Collections{LessonPlans: []models.LessonPlan{
		{ID: "a1", Date: "2024-03-04", ClassID: "c1", Files: []models.LessonFile{{ID: "f1", Path: "lessons/a1/f1"}}},
		{ID: "a2", Date: "2024-03-11", ClassID: "c1", Files: []models.LessonFile{}},
	}})

	title := "Painting"
	updated, err := svc.Update(ctx, "a2", dto.UpdateLessonRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Painting", updated.Title)
	assert.Equal(t, "2024-03-11", updated.Date)

	bad := "9am"
	_, err = svc.Update(ctx, "a2", dto.UpdateLessonRequest{Time: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	count, err := svc.Delete(ctx, "a1", models.DeleteFuture)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, files.files, 1)

	_, err = svc.Delete(ctx, "a1", models.DeleteSingle)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Delete(ctx, "a1", "all")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLessonQueriesHoldExclusiveSection(t *testing.T) {
	ctx := context.Background()
	base := newTestRepo(t)
	seed(t, base, models.Collections{
		Classes:     []models.Class{{ID: "c1", Name: "5A"}},
		LessonPlans: []models.LessonPlan{{ID: "l1", ClassID: "c1", Date: "2024-03-11", Time: "09:00"}},
	})
	repo := &lockTrackingRepo{CollectionRepository: base}
	svc := NewScheduleService(repo, nil, nil, nil)

	plans, err := svc.LessonsOnDate(ctx, "2024-03-11", models.LessonFilter{})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	_, err = svc.LessonsInRange(ctx, "2024-03-01", "2024-03-31", models.LessonFilter{ClassID: "c1"})
	require.NoError(t, err)

	assert.Empty(t, repo.unlocked)
}
