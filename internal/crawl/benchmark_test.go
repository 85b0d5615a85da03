package crawl

import (
	"context"
	"io"
	"testing"
	"time"

	"mktdata/internal/fetch"
	"mktdata/internal/model"
	"mktdata/internal/saver"
)

// slowFetcher simulates a per-request round trip and returns a small table.
type slowFetcher struct {
	delay time.Duration
}

func (f slowFetcher) Fetch(_ context.Context, req fetch.Request) (*model.Table, error) {
	time.Sleep(f.delay)
	t := model.NewTable(nil, 1)
	t.Append(model.Bar{Timestamp: req.Start})
	return t, nil
}

func runBench(b *testing.B, workers int) {
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	jobs := NewJobs(symbols, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC))
	for i := 0; i < b.N; i++ {
		Run(context.Background(), slowFetcher{delay: 12 * time.Millisecond}, saver.CSVSaver{}, jobs, Options{
			Source:    "bench",
			Timeframe: "1Hour",
			BaseDir:   b.TempDir(),
			Workers:   workers,
			LogOutput: io.Discard,
		})
	}
}

// BenchmarkRunWorkers compares the pool with one and three workers on 9 symbols.
func BenchmarkRunWorkers(b *testing.B) {
	b.Run("Workers1", func(b *testing.B) { runBench(b, 1) })
	b.Run("Workers3", func(b *testing.B) { runBench(b, 3) })
}
