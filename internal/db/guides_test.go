package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"docsynth/internal/config"
	"docsynth/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, InitDB(cfg))
}

func seed(t *testing.T, id, projectType string, at time.Time) {
	t.Helper()
	g := &model.Guide{ID: id, ProjectType: projectType, Content: "# " + id, CreatedAt: at}
	r := &model.HistoryRecord{ID: model.RecordID(id), ProjectType: projectType, Status: model.StatusCompleted, CreatedAt: at}
	require.NoError(t, CreateGuideWithHistory(context.Background(), g, r))
}

func TestCreateAndGetGuide(t *testing.T) {
	setupTestDB(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seed(t, "g1", "web-app", at)

	g, err := GetGuide(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "# g1", g.Content)

	_, err = GetGuide(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateGuideWithHistoryRollsBack(t *testing.T) {
	setupTestDB(t)
	at := time.Now()
	seed(t, "dup", "cli", at)

	// 历史记录主键冲突，指南也不应写入
	g := &model.Guide{ID: "other", ProjectType: "cli", CreatedAt: at}
	r := &model.HistoryRecord{ID: "dup", ProjectType: "cli", Status: model.StatusCompleted, CreatedAt: at}
	require.Error(t, CreateGuideWithHistory(context.Background(), g, r))

	_, err := GetGuide(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndCountHistory(t *testing.T) {
	setupTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seed(t, "c", "web-app", base.Add(2*time.Minute))
	seed(t, "a", "web-app", base)
	seed(t, "b", "cli", base.Add(time.Minute))

	records, err := ListHistory(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, model.RecordID("a"), records[0].ID)
	assert.Equal(t, model.RecordID("b"), records[1].ID)
	assert.Equal(t, model.RecordID("c"), records[2].ID)

	page, err := ListHistory(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, model.RecordID("b"), page[0].ID)

	n, err := CountHistory(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	counts, err := CountHistoryByProjectType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"web-app": 2, "cli": 1}, counts)
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := openDialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
