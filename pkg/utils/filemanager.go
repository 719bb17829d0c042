// =============================================================================
// OBX Importer - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a conversion run:
//   - finding OBX exports in the input directory
//   - archiving converted exports and the quotations written for them
//   - naming quotation files
//   - writing a plain-text run summary
//
// ARCHIVAL STRATEGY:
//   - An OBX export is moved to input_archive once its quotation is written
//   - Quotation files (JSON, XLSX) are copied to output_archive
//   - Exports that failed to convert stay in the input directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InputExtension is the file extension of OBX exports.
const InputExtension = ".obx"

// summaryRule separates the sections of the summary file.
var summaryRule = strings.Repeat("=", 80)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager locates and archives the files of a conversion run.
type FileManager struct {
	// InputDir holds the OBX exports waiting for conversion.
	InputDir string

	// OutputDir receives the quotation files.
	OutputDir string

	// InputArchiveDir receives converted OBX exports.
	InputArchiveDir string

	// OutputArchiveDir receives copies of the quotation files.
	OutputArchiveDir string

	// UseTimestampSubdirs files archived copies under YYYY/MM/DD.
	// Example: input_archive/2024/01/15/kueche.obx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables archival. When false the archive methods
	// leave the file where it is and return its path.
	ArchiveOnSuccess bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager returns a FileManager for the given directories with
// archival enabled and flat archive directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the input, output and archive directories.
//
// RETURNS:
//   - An error naming the first directory that could not be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the OBX files in the input directory.
//
// RETURNS:
//   - The file paths sorted by name. The extension match ignores case.
//   - An error if the directory cannot be read.
//
// Subdirectories are not scanned.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), InputExtension) {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a converted OBX export into the input archive.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archival is disabled.
//   - An error if the file could not be moved.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	return fm.archive(fm.InputArchiveDir, filePath, true)
}

// ArchiveOutputFile copies a quotation file into the output archive. The
// original stays in the output directory.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archival is disabled.
//   - An error if the file could not be copied.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	return fm.archive(fm.OutputArchiveDir, filePath, false)
}

// archive copies filePath into archiveDir and, if move is set, removes the
// original. Moves try a rename before falling back to copy and remove.
func (fm *FileManager) archive(archiveDir, filePath string, move bool) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	target := fm.archivePath(archiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if move && os.Rename(filePath, target) == nil {
		return target, nil
	}

	if err := copyFile(filePath, target); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}
	if move {
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return target, nil
}

// archivePath places the file directly in archiveDir, or in its dated
// subdirectory when UseTimestampSubdirs is set.
func (fm *FileManager) archivePath(archiveDir, filePath string) string {
	name := filepath.Base(filePath)
	if !fm.UseTimestampSubdirs {
		return filepath.Join(archiveDir, name)
	}
	return filepath.Join(archiveDir, filepath.FromSlash(fm.clock().Format("2006/01/02")), name)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholders of an output name format.
//
// PARAMETERS:
//   - format: The file name pattern. Built-in placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: Further placeholder values keyed without braces, such as
//             "original" for the room names of the quotation.
//
// RETURNS:
//   - The file name, always ending in .json. Unknown placeholders are kept.
//
// EXAMPLE:
//   format: "{original}_{uuid}.json"
//   params: {"original": "Küche_Bad"}
//   output: "Küche_Bad_a1b2c3d4-e5f6-7890-abcd-ef1234567890.json"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	pairs := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}

	name := strings.NewReplacer(pairs...).Replace(format)
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		name += ".json"
	}
	return name
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary collects the outcome of one convert run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalJobs       int
	SuccessfulJobs  int
	FailedJobs      int
	TotalArticles   int
	TotalLineItems  int
	TotalUnits      int
	TotalWarnings   int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes one written quotation. InputFiles has one
// entry per room.
type ProcessedFileInfo struct {
	InputFiles  []string
	OutputFile  string
	Articles    int
	LineItems   int
	Units       int
	NetTotal    string
	ProcessTime time.Duration
}

// FailedFileInfo describes one quotation that could not be produced.
type FailedFileInfo struct {
	InputFiles   []string
	ErrorMessage string
}

// WriteSummaryLog writes the run summary as processing_summary_<end>.txt.
//
// PARAMETERS:
//   - summary: The collected run outcome.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if the file could not be written.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	path := filepath.Join(outputDir, "processing_summary_"+summary.EndTime.Format("20060102_150405")+".txt")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	field := func(width int, label string, value any) {
		fmt.Fprintf(w, "  %-*s %v\n", width, label+":", value)
	}

	fmt.Fprintf(w, "OBX Importer - Processing Summary\n%s\n\n", summaryRule)

	w.WriteString("Run Information:\n")
	field(15, "Start Time", summary.StartTime.Format("2006-01-02 15:04:05"))
	field(15, "End Time", summary.EndTime.Format("2006-01-02 15:04:05"))
	field(15, "Duration", summary.EndTime.Sub(summary.StartTime))

	w.WriteString("\nStatistics:\n")
	field(19, "Total Jobs", summary.TotalJobs)
	field(19, "Successful", summary.SuccessfulJobs)
	field(19, "Failed", summary.FailedJobs)
	field(19, "Total Articles", summary.TotalArticles)
	field(19, "Total Line Items", summary.TotalLineItems)
	field(19, "Total Units", summary.TotalUnits)
	field(19, "Warnings", summary.TotalWarnings)
	w.WriteString("\n")

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintf(w, "Quotations Written:\n%s\n", strings.Repeat("-", 80))
		for _, pf := range summary.ProcessedFiles {
			field(13, "Rooms", strings.Join(pf.InputFiles, ", "))
			field(13, "Output", pf.OutputFile)
			field(13, "Articles", pf.Articles)
			field(13, "Line Items", pf.LineItems)
			field(13, "Units", pf.Units)
			field(13, "Net Total", pf.NetTotal+" EUR")
			field(13, "Process Time", pf.ProcessTime)
			w.WriteString("\n")
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprintf(w, "Failed Conversions:\n%s\n", strings.Repeat("-", 80))
		for _, ff := range summary.FailedFilesList {
			field(6, "Input", strings.Join(ff.InputFiles, ", "))
			field(6, "Error", ff.ErrorMessage)
			w.WriteString("\n")
		}
	}

	fmt.Fprintf(w, "%s\nEnd of Summary\n", summaryRule)

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return path, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies src to dst and syncs dst to disk.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
