package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mktdata/internal/fetch"
	"mktdata/internal/provider"
	"mktdata/internal/provider/alpaca"
	"mktdata/internal/saver"
)

const dateOnly = "2006-01-02"

// rangeFlags are the flags shared by every fetching command.
type rangeFlags struct {
	start     string
	end       string
	timeframe string
	limit     int
	strategy  string
	out       string
}

func (f *rangeFlags) register(cmd *cobra.Command, timeframe string) {
	cmd.Flags().StringVar(&f.start, "start", "", "start date or RFC3339 time (inclusive)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date or RFC3339 time (inclusive, a bare date means end of day)")
	cmd.Flags().StringVar(&f.timeframe, "timeframe", timeframe, "bar size")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size, 0 = source maximum")
	cmd.Flags().StringVar(&f.out, "out", "", "output file, stdout when empty")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *rangeFlags) bounds() (time.Time, time.Time, error) {
	start, err := parseTime(f.start, false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	end, err := parseTime(f.end, true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	return start, end, nil
}

func (f *rangeFlags) request(symbol string) (fetch.Request, error) {
	start, end, err := f.bounds()
	if err != nil {
		return fetch.Request{}, err
	}
	return fetch.Request{
		Symbol:    strings.ToUpper(symbol),
		Start:     start,
		End:       end,
		Timeframe: f.timeframe,
		PageSize:  f.limit,
	}, nil
}

// parseTime accepts RFC3339 or a bare UTC date. With endOfDay a bare date
// resolves to its last millisecond.
func parseTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD or RFC3339, got %q", s)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Millisecond)
	}
	return d, nil
}

func newBarsCmd(c *cli) *cobra.Command {
	var f rangeFlags
	cmd := &cobra.Command{
		Use:   "bars SYMBOL",
		Short: "Fetch stock bars from Alpaca",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := alpacaFetcher(c, f.strategy)
			if err != nil {
				return err
			}
			return c.fetchAndWrite(cmd.Context(), tf, &f, args[0])
		},
	}
	f.register(cmd, "1Hour")
	cmd.Flags().StringVar(&f.strategy, "strategy", provider.StrategyToken, "token | daily")
	return cmd
}

func newKlinesCmd(c *cli) *cobra.Command {
	var f rangeFlags
	cmd := &cobra.Command{
		Use:   "klines SYMBOL",
		Short: "Fetch spot klines from Binance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := binanceFetcher(c, f.strategy)
			if err != nil {
				return err
			}
			return c.fetchAndWrite(cmd.Context(), tf, &f, args[0])
		},
	}
	f.register(cmd, "1h")
	cmd.Flags().StringVar(&f.strategy, "strategy", provider.StrategyToken, "token | daily")
	return cmd
}

// alpacaFetcher builds the Alpaca fetcher. The daily strategy asks for raw prices.
func alpacaFetcher(c *cli, strategy string) (fetch.TableFetcher, error) {
	src, err := InitializeAlpaca(c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(strategy, provider.StrategyDaily) {
		src = src.WithAdjustment(alpaca.AdjustmentRaw)
	}
	return provider.NewTableFetcher(src, strategy, c.logger)
}

// binanceFetcher builds the klines fetcher. The token strategy follows the
// open-time cursor the source hands back on full pages.
func binanceFetcher(c *cli, strategy string) (fetch.TableFetcher, error) {
	return provider.NewTableFetcher(InitializeBinance(c.cfg, c.logger), strategy, c.logger)
}

func (c *cli) fetchAndWrite(ctx context.Context, tf fetch.TableFetcher, f *rangeFlags, symbol string) error {
	s, err := InitializeSaver(c.cfg)
	if err != nil {
		return err
	}
	req, err := f.request(symbol)
	if err != nil {
		return err
	}
	table, err := tf.Fetch(ctx, req)
	if err != nil {
		return err
	}
	c.logger.Info("fetched", "symbol", req.Symbol, "bars", table.Len())
	if f.out == "" {
		return s.Write(os.Stdout, table)
	}
	if err := saver.SaveFile(s, table, f.out); err != nil {
		return err
	}
	c.logger.Info("saved", "path", f.out, "format", s.Extension())
	return nil
}
