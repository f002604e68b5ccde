package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/repository"
	"github.com/noah-isme/starcoin-api/pkg/kv"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *repository.CollectionRepository {
	t.Helper()
	return repository.NewCollectionRepository(kv.NewMemoryStore(), "starcoin_", time.Hour, nil,
		repository.WithClock(func() time.Time { return testNow }))
}

func seed(t *testing.T, repo *repository.CollectionRepository, c models.Collections) {
	t.Helper()
	require.NoError(t, repo.Commit(context.Background(), c))
}

func attended(date string, stars int) models.LessonRecord {
	return models.LessonRecord{Date: date, Stars: stars, Attended: true}
}

type outcomeRecorder struct {
	purchases []string
	refunds   []string
	snapshots []string
}

func (r *outcomeRecorder) ObservePurchase(outcome string) { r.purchases = append(r.purchases, outcome) }
func (r *outcomeRecorder) ObserveRefund(outcome string)   { r.refunds = append(r.refunds, outcome) }
func (r *outcomeRecorder) ObserveSnapshot(kind string, err error) {
	result := kind
	if err != nil {
		result += ":error"
	}
	r.snapshots = append(r.snapshots, result)
}

type removedFiles struct {
	files []models.LessonFile
}

func (r *removedFiles) RemoveFiles(files []models.LessonFile) {
	r.files = append(r.files, files...)
}

// lockTrackingRepo records loads that happen outside the exclusive section.
type lockTrackingRepo struct {
	*repository.CollectionRepository
	inside   bool
	unlocked []string
}

func (r *lockTrackingRepo) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.CollectionRepository.Exclusive(ctx, func(ctx context.Context) error {
		r.inside = true
		defer func() { r.inside = false }()
		return fn(ctx)
	})
}

func (r *lockTrackingRepo) track(name string) {
	if !r.inside {
		r.unlocked = append(r.unlocked, name)
	}
}

func (r *lockTrackingRepo) LoadStudents(ctx context.Context) ([]models.Student, error) {
	r.track("students")
	return r.CollectionRepository.LoadStudents(ctx)
}

func (r *lockTrackingRepo) LoadClasses(ctx context.Context) ([]models.Class, error) {
	r.track("classes")
	return r.CollectionRepository.LoadClasses(ctx)
}

func (r *lockTrackingRepo) LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error) {
	r.track("lessonPlans")
	return r.CollectionRepository.LoadLessonPlans(ctx)
}
