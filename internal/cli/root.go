package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sipsociety/sipcms/internal/config"
	"github.com/sipsociety/sipcms/internal/logging"
	"github.com/sipsociety/sipcms/internal/store"
)

// Execute loads configuration and runs the root command against os.Args.
func Execute() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	return NewRootCmd(cfg).Execute()
}

func NewRootCmd(cfg config.Config) *cobra.Command {
	var dbPath string
	var output string
	var logLevel string
	var outFmt OutputFormat
	var app *App

	dbPath = cfg.DBPath
	output = string(OutputTable)
	logLevel = cfg.LogLevel

	getApp := func() *App { return app }
	getOutput := func() OutputFormat { return outFmt }

	cmd := &cobra.Command{
		Use:           "sipcms",
		Short:         "Sanitize and audit Sip Society rich text content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			parsedFmt, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			outFmt = parsedFmt
			if !requiresApp(cmd) {
				return nil
			}
			if app != nil {
				return nil
			}
			if !config.ValidLogLevel(logLevel) {
				return fmt.Errorf("%w: invalid log level %q (expected debug|info|warn|error)", store.ErrInvalidInput, logLevel)
			}
			runCfg := cfg
			runCfg.LogLevel = logLevel
			log, err := logging.New(runCfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a, err := NewApp(runCfg, dbPath, log.With(zap.String("command", cmd.CommandPath())))
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				_ = app.log.Sync()
				_ = app.Close()
				app = nil
			}
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", dbPath, "SQLite database path")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", output, "Output format: table, json, wide")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")

	cmd.AddCommand(newSanitizeCmd(getOutput))
	cmd.AddCommand(newRenderCmd(getOutput))
	cmd.AddCommand(newImportCmd(getApp, getOutput))
	cmd.AddCommand(newExportCmd(getApp, getOutput))
	cmd.AddCommand(newGetCmd(getApp, getOutput))
	cmd.AddCommand(newSearchCmd(getApp, getOutput))
	cmd.AddCommand(newAuditCmd(getApp, getOutput))
	cmd.AddCommand(newUpdateCmd(getApp, getOutput))
	cmd.AddCommand(newRemoveCmd(getApp, getOutput))

	return cmd
}

func parseOutputFormat(raw string) (OutputFormat, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch OutputFormat(s) {
	case OutputTable, OutputJSON, OutputWide:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected table|json|wide)", raw)
	}
}

// requiresApp reports whether cmd needs the database. The sanitizer commands
// work on stdin or files only.
func requiresApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", "sanitize", "render":
			return false
		}
	}
	return true
}
