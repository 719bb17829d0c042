package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestFileManager(t)

	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		assert.DirExists(t, dir)
	}
	// Running it twice is fine.
	assert.NoError(t, fm.EnsureDirectories())
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestFileManager(t)

	touch(t, filepath.Join(fm.InputDir, "wohnzimmer.obx"), "<cutBuffer/>")
	touch(t, filepath.Join(fm.InputDir, "Bad.OBX"), "<cutBuffer/>")
	touch(t, filepath.Join(fm.InputDir, "kueche.obx"), "<cutBuffer/>")
	touch(t, filepath.Join(fm.InputDir, "notes.txt"), "")
	touch(t, filepath.Join(fm.InputDir, "kueche.obx.bak"), "")
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "alt.obx"), 0755))
	touch(t, filepath.Join(fm.InputDir, "alt.obx", "flur.obx"), "<cutBuffer/>")

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"Bad.OBX", "kueche.obx", "wohnzimmer.obx"}, names)
}

func TestDiscoverInputFiles_MissingDirectory(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "", "")

	_, err := fm.DiscoverInputFiles()
	assert.ErrorContains(t, err, "failed to scan input directory")
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestFileManager(t)
	src := filepath.Join(fm.InputDir, "kueche.obx")
	touch(t, src, "<cutBuffer/>")

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "kueche.obx"), archived)
	assert.NoFileExists(t, src)
	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "<cutBuffer/>", string(data))
}

func TestArchiveOutputFile_DateSubdirectories(t *testing.T) {
	fm := newTestFileManager(t)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC) }

	src := filepath.Join(fm.OutputDir, "kueche.json")
	touch(t, src, "{}")

	archived, err := fm.ArchiveOutputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fm.OutputArchiveDir, "2024", "01", "05", "kueche.json"), archived)
	assert.FileExists(t, archived)
	assert.FileExists(t, src)
}

func TestArchive_Disabled(t *testing.T) {
	fm := newTestFileManager(t)
	fm.ArchiveOnSuccess = false

	src := filepath.Join(fm.InputDir, "kueche.obx")
	touch(t, src, "<cutBuffer/>")

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.FileExists(t, src)

	archived, err = fm.ArchiveOutputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
}

func TestArchiveInputFile_MissingSource(t *testing.T) {
	fm := newTestFileManager(t)

	_, err := fm.ArchiveInputFile(filepath.Join(fm.InputDir, "gone.obx"))
	assert.ErrorContains(t, err, "failed to copy file to archive")
}

func TestGenerateOutputFileName(t *testing.T) {
	uuidPattern := `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

	tests := []struct {
		name    string
		format  string
		params  map[string]string
		pattern string
	}{
		{name: "default format", format: "{original}_{uuid}.json", params: map[string]string{"original": "kueche"}, pattern: `^kueche_` + uuidPattern + `\.json$`},
		{name: "timestamp", format: "{original}_{timestamp}", params: map[string]string{"original": "Bad"}, pattern: `^Bad_\d{8}_\d{6}\.json$`},
		{name: "date and time", format: "angebot_{date}-{time}.JSON", pattern: `^angebot_\d{8}-\d{6}\.JSON$`},
		{name: "custom placeholder", format: "{customer}", params: map[string]string{"customer": "muster"}, pattern: `^muster\.json$`},
		{name: "unknown placeholder kept", format: "{other}", pattern: `^\{other\}\.json$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOutputFileName(tt.format, tt.params)
			assert.Regexp(t, regexp.MustCompile(tt.pattern), got)
		})
	}
}

func TestGenerateOutputFileName_Unique(t *testing.T) {
	a := GenerateOutputFileName("{uuid}", nil)
	b := GenerateOutputFileName("{uuid}", nil)
	assert.NotEqual(t, a, b)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	summary := ProcessingSummary{
		StartTime:      start,
		EndTime:        start.Add(90 * time.Second),
		TotalJobs:      2,
		SuccessfulJobs: 1,
		FailedJobs:     1,
		TotalArticles:  7,
		TotalLineItems: 5,
		TotalUnits:     8,
		TotalWarnings:  3,
		ProcessedFiles: []ProcessedFileInfo{{
			InputFiles:  []string{"Küche.obx", "Bad.obx"},
			OutputFile:  "Küche_Bad.json",
			Articles:    7,
			LineItems:   5,
			Units:       8,
			NetTotal:    "1434.50",
			ProcessTime: 250 * time.Millisecond,
		}},
		FailedFilesList: []FailedFileInfo{{
			InputFiles:   []string{"flur.obx"},
			ErrorMessage: "not an OBX document",
		}},
	}

	path, err := WriteSummaryLog(summary, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processing_summary_20240301_090130.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "OBX Importer - Processing Summary\n"))
	assert.Contains(t, content, "Duration:       1m30s")
	assert.Contains(t, content, "Total Jobs:         2")
	assert.Contains(t, content, "Warnings:           3")
	assert.Contains(t, content, "Rooms:        Küche.obx, Bad.obx")
	assert.Contains(t, content, "Net Total:    1434.50 EUR")
	assert.Contains(t, content, "Input: flur.obx\n  Error: not an OBX document")
	assert.True(t, strings.HasSuffix(content, "End of Summary\n"))
}

func TestWriteSummaryLog_Empty(t *testing.T) {
	path, err := WriteSummaryLog(ProcessingSummary{}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Quotations Written:")
	assert.NotContains(t, string(data), "Failed Conversions:")
}

func TestWriteSummaryLog_MissingDirectory(t *testing.T) {
	_, err := WriteSummaryLog(ProcessingSummary{}, filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "failed to create summary file")
}
