// =============================================================================
// OBX Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// (convert, validate, version) are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (obx-importer)
//   ├── convertCmd (obx-importer convert)
//   ├── validateCmd (obx-importer validate)
//   └── versionCmd (obx-importer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading config.yaml before any subcommand runs
//   3. Building the zap logger from the logging settings
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/Fidge123/lexware-obx-importer/internal/config"
	"github.com/Fidge123/lexware-obx-importer/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set by loadEnvironment before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "obx-importer",
	Short: "OBX Importer - Turn furniture planning exports into Lexware quotations",
	Long: `OBX Importer reads OBX exports from furniture planning software and turns
them into quotation payloads for the Lexware Office API.

Key Features:
  - Article prices include all nested component prices
  - Component lists as separate text lines or folded into the description
  - Identical articles grouped into one line with a quantity
  - Several files combined into one quotation with a section per room
  - Freight costs estimated from packing volume

Example Usage:
  obx-importer convert                        # Convert all files in the input directory
  obx-importer convert --file kueche.obx      # Convert a single file
  obx-importer convert --rooms eg.obx og.obx  # One quotation, one section per file
  obx-importer validate kueche.obx            # Report problems without converting`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvironment()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadEnvironment loads the configuration and builds the logger.
func loadEnvironment() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	log, err := utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: cfg.LogFile,
		Format:     cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	mainConfig = cfg
	logger = log
	logger.Debug("Loaded configuration", zap.String("path", cfgFile))
	return nil
}
