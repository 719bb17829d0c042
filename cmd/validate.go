// =============================================================================
// OBX Importer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which reports problems in OBX
// files without converting them.
//
// COMMAND USAGE:
//   obx-importer validate [files...] [--strict]
//
// Without arguments every *.obx file in the input directory is checked.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Fidge123/lexware-obx-importer/internal/obxparser"
	"github.com/Fidge123/lexware-obx-importer/internal/validation"
	"github.com/Fidge123/lexware-obx-importer/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// strictValidate treats warnings as errors.
var strictValidate bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check OBX files for missing or unreadable data",
	Long: `The validate command parses OBX files and lists everything the converter
would have to default: articles without a price, article number or short text,
unreadable prices and volumes, empty room folders.

The command fails when any file has errors, or with --strict any findings.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		files := args
		if len(files) == 0 {
			fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
			found, err := fm.DiscoverInputFiles()
			if err != nil {
				return fmt.Errorf("failed to discover input files: %w", err)
			}
			files = found
		}
		return runValidate(cmd, files)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidate, "strict", false, "Treat warnings as errors")
}

// runValidate checks every file and prints its findings.
func runValidate(cmd *cobra.Command, files []string) error {
	out := cmd.OutOrStdout()
	validator := validation.NewValidator(validation.ValidationOptions{TreatWarningsAsErrors: strictValidate})

	invalid := 0
	for _, file := range files {
		name := filepath.Base(file)

		data, err := obxparser.ParseFile(file)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "✗ %s: %v\n", name, err)
			continue
		}

		result := validator.Validate(data.Document)
		logger.Debug("Validated file",
			zap.String("file", name),
			zap.Int("articles", result.ArticlesValidated),
			zap.Int("errors", result.ErrorCount),
			zap.Int("warnings", result.WarningCount))

		mark := "✓"
		if !result.IsValid {
			mark = "✗"
			invalid++
		}
		fmt.Fprintf(out, "%s %s: %d article(s), %d error(s), %d warning(s)\n",
			mark, name, result.ArticlesValidated, result.ErrorCount, result.WarningCount)
		if len(result.Errors) > 0 {
			fmt.Fprintln(out, validation.FormatErrors(result.Errors))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", invalid, len(files))
	}
	return nil
}
