package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/internal/repository"
	"github.com/noah-isme/starcoin-api/internal/service"
	"github.com/noah-isme/starcoin-api/pkg/kv"
)

func memoryOpener(t *testing.T) (dataOpener, *repository.CollectionRepository) {
	t.Helper()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := repository.NewCollectionRepository(kv.NewMemoryStore(), "starcoin_", time.Hour, nil,
		repository.WithClock(func() time.Time { return now }))
	return func(ctx context.Context) (*service.DataService, func(), error) {
		return service.NewDataService(repo, nil, nil), func() {}, nil
	}, repo
}

func execute(t *testing.T, open dataOpener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExportImportYAMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	source, sourceRepo := memoryOpener(t)
	require.NoError(t, sourceRepo.Commit(ctx, models.Collections{
		Students: []models.Student{{ID: "s1", Name: "Ann", Lessons: []models.LessonRecord{{Date: "2024-03-01", Stars: 4, Attended: true}}}},
		Classes:  []models.Class{{ID: "c1", Name: "5A", Color: "#112233", Subgroups: []models.Subgroup{}}},
	}))

	path := filepath.Join(t.TempDir(), "backup.yaml")
	_, err := execute(t, source, "export", "--out", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "version: 1.0.0")
	assert.Contains(t, string(raw), "name: Ann")

	target, targetRepo := memoryOpener(t)
	out, err := execute(t, target, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported: students, prizes, classes, lessonPlans")

	students, err := targetRepo.LoadStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ann", students[0].Name)
	assert.Equal(t, 4, students[0].Lessons[0].Stars)

	classes, err := targetRepo.LoadClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "#112233", classes[0].Color)
}

func TestExportJSONToStdout(t *testing.T) {
	open, _ := memoryOpener(t)
	out, err := execute(t, open, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.0.0"`)
	assert.Contains(t, out, `"exportDate": "2024-03-10T12:00:00.000Z"`)
}

func TestClearRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	open, repo := memoryOpener(t)
	require.NoError(t, repo.SaveStudents(ctx, []models.Student{{ID: "s1", Name: "Ann"}}))

	_, err := execute(t, open, "clear")
	require.Error(t, err)

	_, err = execute(t, open, "clear", "--yes")
	require.NoError(t, err)
	students, err := repo.LoadStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)

	out, err := execute(t, open, "backup-info")
	require.NoError(t, err)
	assert.Contains(t, out, "automatic snapshot from 2024-03-10T12:00:00.000Z")

	_, err = execute(t, open, "restore")
	require.NoError(t, err)
	students, err = repo.LoadStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestImportRejectsSnapshotWithoutHeader(t *testing.T) {
	open, _ := memoryOpener(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"students":[]}`), 0o600))

	_, err := execute(t, open, "import", path)
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, formatYAML, resolveFormat("", "a.yml"))
	assert.Equal(t, formatJSON, resolveFormat("", "a.txt"))
	assert.Equal(t, formatYAML, resolveFormat("YML", "a.json"))
}
