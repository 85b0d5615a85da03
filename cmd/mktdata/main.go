package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mktdata/internal/app"
	"mktdata/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

// cli carries state shared by every command after config is loaded.
type cli struct {
	cfg    *app.Config
	logger *slog.Logger

	logLevel string
	format   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "mktdata",
		Short:         "Fetch historical market bars and mine blog posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.ProvideConfig()
			if err != nil {
				return err
			}
			if c.logLevel != "" {
				cfg.LogLevel = c.logLevel
			}
			if c.format != "" {
				cfg.SaveFormat = c.format
			}
			c.cfg = cfg
			c.logger = app.NewLogger(cfg).With("cmd", cmd.Name())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug | info | warn | error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&c.format, "format", "", "csv | json | parquet (overrides SAVE_FORMAT)")

	root.AddCommand(
		newBarsCmd(c),
		newKlinesCmd(c),
		newBatchCmd(c),
		newBlogCmd(c),
	)
	return root
}
