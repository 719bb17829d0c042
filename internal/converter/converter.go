// =============================================================================
// OBX Importer - Converter Module
// =============================================================================
//
// This module runs the conversion pipeline for one job. A job is either a
// single OBX file or, in rooms mode, several OBX files that end up in one
// quotation with a section per room.
//
// CONVERSION PIPELINE:
//   1. Parse every OBX file of the job
//   2. Validate the documents
//   3. Build the quotation payload
//   4. Serialize it as indented JSON
//   5. Write the JSON (and optionally an XLSX rendering)
//   6. Archive the processed files
//
// CONCURRENCY:
//   Each job runs in its own goroutine. A Converter holds no state shared
//   with other converters, and the payload engine is created per document.
//
// =============================================================================

package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Fidge123/lexware-obx-importer/internal/config"
	"github.com/Fidge123/lexware-obx-importer/internal/obxparser"
	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/Fidge123/lexware-obx-importer/internal/validation"
	"github.com/Fidge123/lexware-obx-importer/internal/xlsxexport"
	"github.com/Fidge123/lexware-obx-importer/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrValidationFailed is returned when strict validation rejects a document.
var ErrValidationFailed = errors.New("validation failed")

// =============================================================================
// JOB AND RESULT STRUCTURES
// =============================================================================

// Job describes one quotation to produce.
type Job struct {
	// Files are the OBX inputs. Without Rooms exactly one file is expected.
	Files []string

	// Rooms builds one multi-room quotation from all Files, each file
	// becoming a room named after it.
	Rooms bool

	// DryRun builds the payload without writing or archiving anything.
	DryRun bool

	// Archive moves the inputs to the input archive after success. Only
	// files discovered in the input directory are archived.
	Archive bool
}

// Result represents the outcome of processing a single job.
type Result struct {
	// Files are the input files of the job.
	Files []string

	// OutputFile is the path to the generated JSON file.
	// This is empty if processing failed or for dry runs.
	OutputFile string

	// XLSXFile is the path to the spreadsheet rendering, if one was written.
	XLSXFile string

	// Payload is the serialized quotation.
	Payload []byte

	// Quotation is the generated quotation.
	Quotation *types.Quotation

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Documents is the number of OBX documents parsed.
	Documents int

	// Articles is the number of top-level articles across all documents.
	Articles int

	// LineItems is the number of line items in the payload.
	LineItems int

	// Units is the summed quantity of all priced line items.
	Units int

	// Warnings is the number of validation findings.
	Warnings int

	// NetTotal is the net sum of all priced line items, shipping included.
	NetTotal decimal.Decimal

	// ProcessingTime is the time taken to process the job.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of one job.
type Converter struct {
	job        Job
	mainConfig *config.MainConfig
	logger     *zap.Logger
	files      *utils.FileManager

	// now is passed to the payload engine; nil means time.Now.
	now func() time.Time
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - job: The files and mode to convert.
//   - mainConfig: The main application configuration.
//   - logger: The logger; nil disables logging.
//
// RETURNS:
//   - A new Converter instance.
func New(job Job, mainConfig *config.MainConfig, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mainConfig == nil {
		mainConfig = config.DefaultMainConfig()
	}

	fm := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	fm.UseTimestampSubdirs = mainConfig.ArchiveByDate
	fm.ArchiveOnSuccess = mainConfig.ShouldArchive()

	return &Converter{
		job:        job,
		mainConfig: mainConfig,
		logger:     logger.With(zap.Strings("files", job.Files)),
		files:      fm,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the job.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		Files:   c.job.Files,
		Success: false,
	}

	if len(c.job.Files) == 0 {
		result.Error = ErrNoDocuments
		return result
	}
	if !c.job.Rooms && len(c.job.Files) > 1 {
		result.Error = fmt.Errorf("expected one file without rooms mode, got %d", len(c.job.Files))
		return result
	}

	// =========================================================================
	// STEP 1: PARSE OBX FILES
	// =========================================================================

	c.logger.Info("Processing job", zap.Bool("rooms", c.job.Rooms))

	rooms := make([]RoomDocument, 0, len(c.job.Files))
	for _, file := range c.job.Files {
		data, err := obxparser.ParseFile(file)
		if err != nil {
			result.Error = err
			return result
		}
		rooms = append(rooms, RoomDocument{Name: data.RoomName, Document: data.Document})
		result.Stats.Articles += CountArticles(data.Document)
	}
	result.Stats.Documents = len(rooms)

	c.logger.Debug("Parsed documents",
		zap.Int("documents", result.Stats.Documents),
		zap.Int("articles", result.Stats.Articles))

	// =========================================================================
	// STEP 2: VALIDATE DOCUMENTS
	// =========================================================================
	// The payload engine never fails on sparse input, so findings are logged
	// and only stop the job when strict validation is enabled.

	for _, room := range rooms {
		vr := validation.ValidateDocument(room.Document)
		result.Stats.Warnings += len(vr.Errors)

		for _, ve := range vr.Errors {
			c.logger.Warn("Validation finding",
				zap.String("room", room.Name),
				zap.String("rule", ve.Rule),
				zap.String("location", ve.Location),
				zap.String("message", ve.Message))
		}

		if !vr.IsValid && c.mainConfig.StrictValidation {
			result.Error = fmt.Errorf("%s: %w with %d error(s)", room.Name, ErrValidationFailed, vr.ErrorCount)
			return result
		}
	}

	// =========================================================================
	// STEP 3: BUILD PAYLOAD
	// =========================================================================

	opts := c.options()

	var quotation *types.Quotation
	if c.job.Rooms {
		q, err := CreatePayload(rooms, opts)
		if err != nil {
			result.Error = fmt.Errorf("failed to create payload: %w", err)
			return result
		}
		quotation = q
	} else {
		quotation = CreateSinglePayload(rooms[0].Document, opts)
	}

	result.Quotation = quotation
	result.Stats.LineItems = len(quotation.LineItems)
	result.Stats.Units = quotation.UnitCount()
	result.Stats.NetTotal = netTotal(quotation)

	// =========================================================================
	// STEP 4: SERIALIZE
	// =========================================================================

	payload, err := json.MarshalIndent(quotation, "", "  ")
	if err != nil {
		result.Error = fmt.Errorf("failed to serialize payload: %w", err)
		return result
	}
	result.Payload = payload

	if c.job.DryRun {
		c.logger.Info("Dry run, nothing written",
			zap.Int("line_items", result.Stats.LineItems),
			zap.Int("units", result.Stats.Units))
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILES
	// =========================================================================

	outputPath, err := c.writeOutput(payload, rooms)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("Wrote quotation", zap.String("output", outputPath))

	if c.mainConfig.WriteXLSX {
		xlsxPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".xlsx"
		if err := xlsxexport.Write(quotation, xlsxPath); err != nil {
			result.Error = fmt.Errorf("failed to write spreadsheet: %w", err)
			return result
		}
		result.XLSXFile = xlsxPath
		c.logger.Info("Wrote spreadsheet", zap.String("output", xlsxPath))
	}

	// =========================================================================
	// STEP 6: ARCHIVE FILES
	// =========================================================================

	if c.job.Archive {
		if err := c.archiveFiles(result); err != nil {
			// Archival problems do not fail a written quotation.
			c.logger.Warn("Failed to archive files", zap.Error(err))
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// options maps the quotation configuration onto payload options.
func (c *Converter) options() Options {
	q := c.mainConfig.Quotation

	opts := Options{
		Multiplier:         q.Multiplier,
		IncludeDescription: q.ShouldIncludeDescription(),
		GroupLineItems:     q.ShouldGroupLineItems(),
		Now:                c.now,
		Logger:             c.logger,
	}
	if !q.Customer.IsZero() {
		customer := q.Customer
		opts.Address = &customer
	}
	return opts
}

// writeOutput writes the JSON payload to the output directory.
//
// FILE NAMING:
//   OutputNameFormat with {original} set to the input file name, or the
//   room names joined by "_" in rooms mode.
func (c *Converter) writeOutput(payload []byte, rooms []RoomDocument) (string, error) {
	names := make([]string, len(rooms))
	for i, room := range rooms {
		names[i] = room.Name
	}

	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, map[string]string{
		"original": strings.Join(names, "_"),
	})
	outputPath := filepath.Join(c.mainConfig.OutputDir, fileName)

	if err := os.MkdirAll(c.mainConfig.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// archiveFiles moves the inputs and copies the outputs into the archive
// directories.
func (c *Converter) archiveFiles(result Result) error {
	for _, file := range c.job.Files {
		if _, err := c.files.ArchiveInputFile(file); err != nil {
			return fmt.Errorf("failed to archive input file: %w", err)
		}
	}

	for _, file := range []string{result.OutputFile, result.XLSXFile} {
		if file == "" {
			continue
		}
		if _, err := c.files.ArchiveOutputFile(file); err != nil {
			return fmt.Errorf("failed to archive output file: %w", err)
		}
	}

	return nil
}

// netTotal sums all priced line items exactly.
func netTotal(q *types.Quotation) decimal.Decimal {
	return roomTotal(q.LineItems)
}
