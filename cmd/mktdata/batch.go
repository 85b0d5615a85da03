package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mktdata/internal/app"
	"mktdata/internal/crawl"
	"mktdata/internal/fetch"
	"mktdata/internal/provider"
	"mktdata/internal/slogx"
)

func newBatchCmd(c *cli) *cobra.Command {
	var (
		f       rangeFlags
		source  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch [SYMBOL...]",
		Short: "Fetch many symbols in parallel and save one table per symbol",
		Long:  "Symbols come from the arguments, or from SYMBOLS_FILE (.txt or .json) when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols, err := app.LoadSymbols(c.cfg, args)
			if err != nil {
				return err
			}
			start, end, err := f.bounds()
			if err != nil {
				return err
			}
			s, err := InitializeSaver(c.cfg)
			if err != nil {
				return err
			}

			var tf fetch.TableFetcher
			switch strings.ToLower(source) {
			case "alpaca":
				tf, err = alpacaFetcher(c, f.strategy)
			case "binance":
				tf, err = binanceFetcher(c, f.strategy)
			default:
				err = fmt.Errorf("unsupported source %q (use: alpaca, binance)", source)
			}
			if err != nil {
				return err
			}
			if f.timeframe == "" {
				f.timeframe = defaultTimeframe(source)
			}
			if workers <= 0 {
				workers = c.cfg.Workers
			}

			c.logger.Info("batch start", "source", source, "symbols", len(symbols), "workers", workers,
				"dir", c.cfg.SaveBaseDir(), "format", s.Extension())
			sum := crawl.Run(cmd.Context(), tf, s, crawl.NewJobs(symbols, start, end), crawl.Options{
				Source:    strings.ToLower(source),
				Timeframe: f.timeframe,
				PageSize:  f.limit,
				BaseDir:   c.cfg.SaveBaseDir(),
				Workers:   workers,
				LogLevel:  slogx.ParseLevel(c.cfg.LogLevel),
			})
			c.logger.Info("batch done", "success", sum.Success, "failed", sum.Failed, "bars", sum.TotalBars)
			if sum.Success == 0 && sum.Failed > 0 {
				return fmt.Errorf("all %d symbols failed", sum.Failed)
			}
			return nil
		},
	}
	f.register(cmd, "")
	cmd.Flags().StringVar(&source, "source", "alpaca", "alpaca | binance")
	cmd.Flags().StringVar(&f.strategy, "strategy", provider.StrategyToken, "token | daily")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel fetches, 0 = WORKERS")
	return cmd
}

func defaultTimeframe(source string) string {
	if strings.EqualFold(source, "binance") {
		return "1h"
	}
	return "1Hour"
}
