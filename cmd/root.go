package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"promptchart/internal/app"
	"promptchart/internal/config"
	"promptchart/internal/inputprocessor"
)

// version is set at build time with -ldflags "-X promptchart/cmd.version=...".
var version = "dev"

var configPath string

// skipValidation marks commands that work without a usable model config.
const skipValidation = "skip-validation"

var rootCmd = &cobra.Command{
	Use:   "promptchart",
	Short: "Turn free-text breakdowns into chartable percentages",
	Long: `promptchart reads descriptions like "60% rent, 40% food" or
"3 laptops at $800 and 2 phones at $600" and returns named percentage
values that sum to 100, ready for a pie or bar chart.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
			return nil
		}

		// A missing .env is normal
		_ = godotenv.Load()

		var cfg *config.Config
		var err error
		if configPath != "" {
			cfg, err = config.LoadConfigFile(configPath)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogging(cfg)

		if err := cfg.Validate(); err != nil {
			if cmd.Annotations[skipValidation] == "" {
				return fmt.Errorf("invalid config: %w", err)
			}
			log.Warnf("Config is incomplete: %v", err)
		}

		appInstance, err := app.NewApp(cfg, inputprocessor.New(inputprocessor.Options{}))
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			return appInstance.Close()
		}
		return nil
	},
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Log.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./config.yaml or ~/.config/promptchart/config.yaml)")

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "promptchart", version)
	},
}

var doctorCmd = &cobra.Command{
	Use:         "doctor",
	Short:       "Check database connectivity and the completion provider",
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		cs := appInstance.CompletionService
		fmt.Fprintf(out, "Completion provider: %s (%s), status %s\n", cs.Name(), cs.ModelName(), cs.Status())

		if appInstance.PrimaryStore == nil {
			fmt.Fprintln(out, "Database: not configured (history disabled)")
		} else {
			fmt.Fprintln(out, "Checking database connectivity...")
			if err := appInstance.PrimaryStore.Ping(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}
			fmt.Fprintln(out, "Database connection successful.")
		}

		if appInstance.Config.QueueEnabled() {
			fmt.Fprintf(out, "Queue: redis at %s\n", appInstance.Config.Redis.Address)
		} else {
			fmt.Fprintln(out, "Queue: not configured")
		}
		return nil
	},
}
