// Package cmd implements the notional command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/config"
	"github.com/agentic-research/notional/internal/logging"
	"github.com/agentic-research/notional/internal/output"
	"github.com/agentic-research/notional/internal/session"
	"github.com/agentic-research/notional/internal/transport"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	logLevel   string
	devLog     bool
	formatName string
	selector   string

	cfg    *config.Config
	logger = zap.NewNop()
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to config file (default ~/.agentic-research/notional/config.hcl)")
	f.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVar(&devLog, "dev-log", false, "Human readable logs")
	f.StringVarP(&formatName, "output", "o", "json", "Output format: json, text, markdown")
	f.StringVar(&selector, "select", "", "JSONPath applied to json output")
}

var rootCmd = &cobra.Command{
	Use:           "notional",
	Short:         "Typed access to Notion pages, databases and blocks",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		l, err := logging.New(c.LogLevel, devLog)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// newSession builds a session from the loaded configuration.
func newSession() (*session.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := transport.New(cfg.Token,
		transport.WithBaseURL(cfg.BaseURL),
		transport.WithAPIVersion(cfg.APIVersion))
	return session.New(t, session.WithLogger(logger), session.WithPageSize(cfg.PageSize)), nil
}

func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format, selector)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
