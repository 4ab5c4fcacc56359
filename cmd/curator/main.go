// Package main implements the curator CLI, which tailors structured documents
// to a job description under per-field permissions and highlights evidence in
// free text.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/resume-curator/internal/config"
)

var (
	configPath string
	apiKeyFlag string
	verbose    bool

	// opts holds flag values, filled from the config file in PersistentPreRunE.
	opts config.Config

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Permission-scoped document curation and evidence highlighting",
	Long: `curator tailors a structured document (such as a resume) to a job description.
Only fields named in a permission file are touched, and only with the operations
granted there: remove, reorder, or rewrite. It can also highlight phrases in a
body of text that are evidence for the job's requirements.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyConfigFile(); err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if opts.Verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Named(cmd.Name())
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API key (overrides config and GEMINI_API_KEY)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

// applyConfigFile merges the config file beneath the flags and validates the
// result. Flags always win; a flag naming one of a mutually exclusive pair
// clears the other from the file.
func applyConfigFile() error {
	opts.Verbose = opts.Verbose || verbose
	if configPath == "" {
		return opts.Validate()
	}

	file, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if opts.Job != "" || opts.JobURL != "" {
		file.Job, file.JobURL = "", ""
	}
	if opts.CacheDir != "" || opts.DatabaseURL != "" {
		file.CacheDir, file.DatabaseURL = "", ""
	}
	opts = opts.MergeWithDefaults(*file)
	opts.Verbose = opts.Verbose || file.Verbose
	opts.UseBrowser = opts.UseBrowser || file.UseBrowser

	return opts.Validate()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
