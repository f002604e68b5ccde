package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/repository"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/export"
)

type pdfStub struct {
	title string
	data  export.Dataset
}

func (p *pdfStub) Render(data export.Dataset, title string) ([]byte, error) {
	p.data, p.title = data, title
	return []byte("%PDF-stub"), nil
}

func newStudentFixture(t *testing.T) (*StudentService, *repository.CollectionRepository, *pdfStub) {
	t.Helper()
	repo := newTestRepo(t)
	seed(t, repo, models.Collections{
		Classes: []models.Class{
			{ID: "c1", Name: "Art", Color: "#112233", Subgroups: []models.Subgroup{{ID: "g1", Name: "A"}, {ID: "g2", Name: "B"}}},
			{ID: "old", Name: "Old", Color: "#000000", Subgroups: []models.Subgroup{}, Archived: true},
		},
		Students: []models.Student{
			{ID: "s1", Name: "Zoe", ClassID: "c1", SubgroupID: "g1", Lessons: []models.LessonRecord{attended("2024-03-04", 4), attended("2024-03-11", 2)}},
			{ID: "s2", Name: "émile", ClassID: "c1", SubgroupID: "g2", Lessons: []models.LessonRecord{attended("2024-03-04", 5)}},
			{ID: "s3", Name: "Anna", ClassID: "old"},
			{ID: "s4", Name: "Bruno"},
		},
		LessonPlans: []models.LessonPlan{
			{ID: "l1", Date: "2024-03-04", ClassID: "c1"},
			{ID: "l2", Date: "2024-03-11", ClassID: "c1", SubgroupID: models.SpecificSubgroup("g1")},
			{ID: "l3", Date: "2024-03-11", ClassID: "old"},
		},
	})
	pdf := &pdfStub{}
	return NewStudentService(repo, "fr", nil, pdf, nil, nil), repo, pdf
}

func studentNames(items []models.StudentWithLedger) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func TestListStudentsFiltersAndCollates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStudentFixture(t)

	active, err := svc.List(ctx, models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bruno", "émile", "Zoe"}, studentNames(active))
	assert.Equal(t, 6, active[2].Ledger.Earned)

	archived, err := svc.List(ctx, models.StudentFilter{Archived: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Bruno"}, studentNames(archived))

	inClass, err := svc.List(ctx, models.StudentFilter{ClassID: "c1", SubgroupID: "g2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"émile"}, studentNames(inClass))
}

func TestRecordLessonUpserts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newStudentFixture(t)

	result, err := svc.RecordLesson(ctx, "s4", "2024-03-04", dto.RecordLessonRequest{Attended: true, Stars: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Ledger.Earned)
	require.Len(t, result.Lessons, 1)
	assert.NotEmpty(t, result.Lessons[0].ID)

	result, err = svc.RecordLesson(ctx, "s4", "2024-03-04", dto.RecordLessonRequest{Attended: false, Stars: 5})
	require.NoError(t, err)
	require.Len(t, result.Lessons, 1)
	assert.Zero(t, result.Lessons[0].Stars)
	assert.Zero(t, result.Ledger.MaxPossible)

	_, err = svc.RecordLesson(ctx, "s4", "2024-03-04", dto.RecordLessonRequest{Attended: true, Stars: 6})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.RecordLesson(ctx, "s4", "March 4", dto.RecordLessonRequest{Attended: true, Stars: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.RecordLesson(ctx, "ghost", "2024-03-04", dto.RecordLessonRequest{Attended: true, Stars: 1})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	students, err := repo.LoadStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students[3].Lessons, 1)
}

func TestCreateAndUpdateStudentMembership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStudentFixture(t)

	_, err := svc.Create(ctx, dto.CreateStudentRequest{Name: "Cleo", ClassID: "c1", SubgroupID: "g9"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateStudentRequest{Name: "Cleo", ClassID: "missing"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Create(ctx, dto.CreateStudentRequest{Name: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	cleo, err := svc.Create(ctx, dto.CreateStudentRequest{Name: "Cleo", ClassID: "c1", SubgroupID: "g1"})
	require.NoError(t, err)
	assert.NotNil(t, cleo.Lessons)

	none := ""
	updated, err := svc.Update(ctx, cleo.ID, dto.UpdateStudentRequest{ClassID: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.ClassID)
	assert.Empty(t, updated.SubgroupID)

	require.NoError(t, svc.Delete(ctx, cleo.ID))
	_, err = svc.Get(ctx, cleo.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStudentFixture(t)

	stats, err := svc.ClassStats(ctx, models.StudentFilter{ClassID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Students)
	assert.Equal(t, 11, stats.TotalStars)
	assert.Equal(t, 15, stats.TotalMax)
	// Zoe has lessons on both dates, émile only on the all-subgroups date.
	assert.Equal(t, 15, stats.AbsoluteMax)
	assert.InDelta(t, 4.0, stats.AverageStars, 1e-9)
	assert.Equal(t, []string{"2024-03-04", "2024-03-11"}, stats.LessonDates)

	empty, err := svc.ClassStats(ctx, models.StudentFilter{ClassID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, empty.AverageStars)
	assert.Empty(t, empty.LessonDates)
}

func TestPurchaseHistoryAndExport(t *testing.T) {
	ctx := context.Background()
	svc, repo, pdf := newStudentFixture(t)
	older := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seed(t, repo, models.Collections{Students: []models.Student{{
		ID:   "s1",
		Name: "Zoe Lane",
		PurchaseHistory: []models.PurchaseHistoryEntry{
			{ID: "h1", PrizeName: "Sticker", Cost: 10, Date: older},
			{ID: "h2", PrizeName: "Candy", Cost: 15, Date: older.Add(48 * time.Hour), Refunded: true},
		},
	}}})

	history, err := svc.PurchaseHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "h2", history[0].ID)

	csvFile, err := svc.ExportPurchases(ctx, "s1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "purchases_zoe_lane.csv", csvFile.Filename)
	assert.True(t, bytes.HasPrefix(csvFile.Payload, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(csvFile.Payload), "Candy,15,yes")

	pdfFile, err := svc.ExportPurchases(ctx, "s1", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfFile.ContentType)
	assert.Equal(t, "Purchases of Zoe Lane", pdf.title)
	assert.Len(t, pdf.data.Rows, 2)

	_, err = svc.ExportPurchases(ctx, "s1", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRosterReadsHoldExclusiveSection(t *testing.T) {
	ctx := context.Background()
	base := newTestRepo(t)
	seed(t, base, models.Collections{
		Classes:  []models.Class{{ID: "c1", Name: "5A"}},
		Students: []models.Student{{ID: "s1", Name: "Ann", ClassID: "c1"}},
	})
	repo := &lockTrackingRepo{CollectionRepository: base}
	svc := NewStudentService(repo, "en", nil, nil, nil, nil)

	students, err := svc.List(ctx, models.StudentFilter{ClassID: "c1"})
	require.NoError(t, err)
	require.Len(t, students, 1)

	_, err = svc.ClassStats(ctx, models.StudentFilter{ClassID: "c1"})
	require.NoError(t, err)

	assert.Empty(t, repo.unlocked)
}
