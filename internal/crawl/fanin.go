package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

func runLogWriter(w io.Writer, lines <-chan string) {
	for s := range lines {
		fmt.Fprintln(w, s)
	}
}

type errorEntry struct {
	Symbol string
	Err    error
}

func runErrorHandler(errors <-chan errorEntry, logger *slog.Logger) {
	for e := range errors {
		logger.Debug("fetch error", "symbol", e.Symbol, "error", e.Err)
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, st *stats, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.mu.Lock()
			s, f, bars := st.success, st.failed, st.totalBars()
			st.mu.Unlock()
			logger.Info("heartbeat", "done", s+f, "total", totalJobs, "success", s, "failed", f, "bars", bars)
		}
	}
}
