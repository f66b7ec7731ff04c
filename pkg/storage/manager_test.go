package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igreport/pkg/report"
	"igreport/pkg/stats"
)

var generated = time.Date(2026, 3, 10, 14, 30, 5, 0, time.UTC)

func buildReport(t *testing.T, username string, at time.Time) *report.Report {
	t.Helper()
	r, err := report.Build(report.Comparison{Self: &stats.ProfileStats{
		Username:          username,
		Followers:         1000,
		EngagementRatePct: 17,
		AvgLikes:          160,
		AvgComments:       10,
		LikesHistory:      []int{160},
		ImageCount:        1,
		WeekdayHistogram:  map[string]int{"Monday": 1},
		SampleSize:        1,
	}}, at)
	require.NoError(t, err)
	return r
}

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	require.NoError(t, err)
	assert.Zero(t, manager.Count())
	assert.Equal(t, tempDir, manager.GetOutputDir())

	path, err := manager.SaveReport(buildReport(t, "nasa", generated), report.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "nasa_20260310-143005.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Contains(t, decoded, "verdict")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	assert.Equal(t, []string{"nasa_20260310-143005.json"}, manager.Reports("nasa"))
	assert.Equal(t, 1, manager.Count())
}

func TestManagerIndexesExistingReports(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	require.NoError(t, err)
	_, err = manager.SaveReport(buildReport(t, "my_brand", generated.Add(time.Hour)), report.FormatText)
	require.NoError(t, err)
	_, err = manager.SaveReport(buildReport(t, "my_brand", generated), report.FormatYAML)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "photo_20260310-143005.jpg"), []byte("x"), 0644))

	reopened, err := NewManager(tempDir)
	require.NoError(t, err)

	assert.Equal(t, 2, reopened.Count())
	assert.Equal(t, []string{
		"my_brand_20260310-143005.yaml",
		"my_brand_20260310-153005.txt",
	}, reopened.Reports("my_brand"))
	assert.Empty(t, reopened.Reports("photo"))
}

func TestFileName(t *testing.T) {
	r := buildReport(t, "nasa", generated.In(time.FixedZone("X", 3600)))

	name, err := FileName(r, "")
	require.NoError(t, err)
	assert.Equal(t, "nasa_20260310-143005.txt", name)

	_, err = FileName(r, "pdf")
	assert.Error(t, err)

	_, err = FileName(nil, report.FormatJSON)
	assert.ErrorIs(t, err, report.ErrNoProfile)
}

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	_, err := NewManager(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
