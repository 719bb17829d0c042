// =============================================================================
// OBX Importer - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which turns OBX files into
// quotation payloads.
//
// COMMAND USAGE:
//   obx-importer convert [files...] [flags]
//
// FLAGS:
//   --file        : OBX file to convert (repeatable, same as positional args)
//   --rooms       : Combine all files into one quotation, one room per file
//   --multiplier  : Price multiplier (overrides quotation.multiplier)
//   --short       : Fold component lists into the article description
//   --no-group    : Emit one line per article instead of grouping
//   --customer    : Recipient name (overrides quotation.customer.name)
//   --xlsx        : Also write a spreadsheet rendering
//   --dry-run     : Print the payload instead of writing files
//
// PROCESSING PIPELINE:
//   1. Collect input files (arguments, or the input directory)
//   2. Build one job per file, or one job for all files with --rooms
//   3. Run the jobs concurrently, bounded by max_concurrency
//   4. Print per-job results and a summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Fidge123/lexware-obx-importer/internal/config"
	"github.com/Fidge123/lexware-obx-importer/internal/converter"
	"github.com/Fidge123/lexware-obx-importer/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// convertFlags holds the values of the convert command's flags.
type convertFlags struct {
	files      []string
	rooms      bool
	multiplier float64
	short      bool
	noGroup    bool
	customer   string
	xlsx       bool
	dryRun     bool
}

var convertOpts convertFlags

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert OBX files into quotation payloads",
	Long: `The convert command reads OBX exports and writes one quotation payload
(JSON) per file into the output directory.

Without file arguments every *.obx file in the input directory is converted.
Those files are moved to the input archive after a successful conversion;
files given on the command line are left in place.

With --rooms all files are combined into a single quotation. Each file becomes
a room section with a banner and a net subtotal, and one freight line covers
the volume of all rooms.

Files are converted concurrently. An error in one file does not affect the
others unless continue_on_error is disabled.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := applyConvertFlags(cmd, mainConfig, convertOpts)
		return runConvert(cmd, cfg, append(convertOpts.files, args...))
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringSliceVar(&convertOpts.files, "file", nil, "OBX file to convert (repeatable)")
	flags.BoolVar(&convertOpts.rooms, "rooms", false, "Combine all files into one quotation with a section per room")
	flags.Float64Var(&convertOpts.multiplier, "multiplier", 1, "Price multiplier")
	flags.BoolVar(&convertOpts.short, "short", false, "Fold component lists into the article description")
	flags.BoolVar(&convertOpts.noGroup, "no-group", false, "Do not merge identical articles")
	flags.StringVar(&convertOpts.customer, "customer", "", "Recipient name")
	flags.BoolVar(&convertOpts.xlsx, "xlsx", false, "Also write a spreadsheet rendering")
	flags.BoolVar(&convertOpts.dryRun, "dry-run", false, "Print the payload instead of writing files")
}

// applyConvertFlags returns a copy of base with every explicitly set flag
// applied. Flags left at their defaults keep the configured values.
func applyConvertFlags(cmd *cobra.Command, base *config.MainConfig, f convertFlags) *config.MainConfig {
	cfg := *base
	q := cfg.Quotation

	if cmd.Flags().Changed("multiplier") {
		q.Multiplier = f.multiplier
	}
	if f.short {
		q.IncludeDescription = boolPtr(false)
	}
	if f.noGroup {
		q.GroupLineItems = boolPtr(false)
	}
	if f.customer != "" {
		q.Customer.Name = f.customer
		q.Customer.ContactID = ""
		if q.Customer.CountryCode == "" {
			q.Customer.CountryCode = "DE"
		}
	}
	if f.xlsx {
		cfg.WriteXLSX = true
	}

	cfg.Quotation = q
	return &cfg
}

func boolPtr(b bool) *bool {
	return &b
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert discovers inputs, runs all jobs and reports the results.
func runConvert(cmd *cobra.Command, cfg *config.MainConfig, files []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	discovered := len(files) == 0
	if discovered {
		fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		found, err := fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		files = found
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No OBX files found in the input directory.")
		return nil
	}

	jobs := buildJobs(files, convertOpts.rooms, convertOpts.dryRun, discovered && cfg.ShouldArchive())
	logger.Info("Starting conversion",
		zap.Int("files", len(files)),
		zap.Int("jobs", len(jobs)),
		zap.Bool("dry_run", convertOpts.dryRun))

	results := runJobs(jobs, cfg, logger)

	summary := utils.ProcessingSummary{
		StartTime: startTime,
		TotalJobs: len(jobs),
	}

	for _, result := range results {
		names := baseNames(result.Files)
		if !result.Success {
			summary.FailedJobs++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFiles:   names,
				ErrorMessage: errorText(result.Error),
			})
			fmt.Fprintf(out, "  ✗ %v: %v\n", names, errorText(result.Error))
			continue
		}

		summary.SuccessfulJobs++
		summary.TotalArticles += result.Stats.Articles
		summary.TotalLineItems += result.Stats.LineItems
		summary.TotalUnits += result.Stats.Units
		summary.TotalWarnings += result.Stats.Warnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFiles:  names,
			OutputFile:  result.OutputFile,
			Articles:    result.Stats.Articles,
			LineItems:   result.Stats.LineItems,
			Units:       result.Stats.Units,
			NetTotal:    result.Stats.NetTotal.StringFixed(2),
			ProcessTime: result.Stats.ProcessingTime,
		})

		if convertOpts.dryRun {
			fmt.Fprintln(out, string(result.Payload))
			continue
		}
		fmt.Fprintf(out, "  ✓ %v -> %s (%d units, %s EUR net)\n",
			names, result.OutputFile, result.Stats.Units, result.Stats.NetTotal.StringFixed(2))
	}

	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Conversion Complete ===")
	fmt.Fprintf(out, "Total jobs:      %d\n", summary.TotalJobs)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulJobs)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedJobs)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if cfg.WriteSummary && !convertOpts.dryRun {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			logger.Warn("Failed to write summary", zap.Error(err))
		} else {
			logger.Info("Wrote summary", zap.String("path", path))
		}
	}

	if summary.FailedJobs > 0 {
		return fmt.Errorf("%d of %d job(s) failed", summary.FailedJobs, summary.TotalJobs)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// buildJobs groups files into jobs: one per file, or one for all in rooms
// mode.
func buildJobs(files []string, rooms, dryRun, archive bool) []converter.Job {
	if rooms {
		return []converter.Job{{Files: files, Rooms: true, DryRun: dryRun, Archive: archive}}
	}

	jobs := make([]converter.Job, len(files))
	for i, file := range files {
		jobs[i] = converter.Job{Files: []string{file}, DryRun: dryRun, Archive: archive}
	}
	return jobs
}

// runJobs converts every job, at most cfg.MaxConcurrency at a time, and
// returns the results in job order. When continue_on_error is disabled, jobs
// not yet started after the first failure are skipped.
func runJobs(jobs []converter.Job, cfg *config.MainConfig, log *zap.Logger) []converter.Result {
	results := make([]converter.Result, len(jobs))
	slots := make(chan struct{}, cfg.MaxConcurrency)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed bool
	)

	for i, job := range jobs {
		slots <- struct{}{}

		mu.Lock()
		stop := failed && !cfg.ShouldContinueOnError()
		mu.Unlock()
		if stop {
			<-slots
			results[i] = converter.Result{Files: job.Files, Error: fmt.Errorf("skipped after earlier failure")}
			continue
		}

		wg.Add(1)
		go func(i int, job converter.Job) {
			defer wg.Done()
			defer func() { <-slots }()

			result := converter.New(job, cfg, log).Run()
			if !result.Success {
				log.Error("Conversion failed",
					zap.Strings("files", job.Files),
					zap.Error(result.Error))
				mu.Lock()
				failed = true
				mu.Unlock()
			}
			results[i] = result
		}(i, job)
	}

	wg.Wait()
	return results
}

func baseNames(files []string) []string {
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = filepath.Base(file)
	}
	return names
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
