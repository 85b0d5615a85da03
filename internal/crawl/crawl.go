package crawl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mktdata/internal/fetch"
	"mktdata/internal/saver"
	"mktdata/internal/slogx"
)

const dateLayout = "2006-01-02"

// Job represents one batch unit (symbol + time range)
type Job struct {
	Symbol string
	From   time.Time
	To     time.Time
}

// JobResult is sent by workers for fan-in
type JobResult struct {
	Ok        bool
	Symbol    string
	DateRange string
	Reason    string
	Bars      int
	Path      string
}

// Options configures a batch run.
type Options struct {
	Source    string // output sub-directory, e.g. "alpaca"
	Timeframe string
	PageSize  int
	BaseDir   string
	Workers   int
	Heartbeat time.Duration
	LogLevel  slog.Level
	LogOutput io.Writer // fan-in log sink, stderr when nil
}

// Summary is the outcome of a batch run.
type Summary struct {
	Success     int
	Failed      int
	TotalBars   int
	SuccessList []string
	FailedList  []FailedEntry
}

// NewJobs builds one job per symbol over the same range.
func NewJobs(symbols []string, from, to time.Time) []Job {
	jobs := make([]Job, 0, len(symbols))
	for _, s := range symbols {
		jobs = append(jobs, Job{Symbol: s, From: from, To: to})
	}
	return jobs
}

// OutputPath returns {base}/{source}/{SYMBOL}/{symbol}_{timeframe}_{from}_to_{to}.{ext}
func OutputPath(base, source, symbol, timeframe string, from, to time.Time, ext string) string {
	name := strings.ToLower(symbol) + "_" + timeframe + "_" + from.UTC().Format(dateLayout) +
		"_to_" + to.UTC().Format(dateLayout) + "." + ext
	return filepath.Join(base, source, strings.ToUpper(symbol), name)
}

// Run fetches every job with opts.Workers workers, saves each table with s
// and writes the run report into {BaseDir}/{Source}. Jobs are independent:
// one failure never stops the others.
func Run(ctx context.Context, f fetch.TableFetcher, s saver.TableSaver, jobs []Job, opts Options) Summary {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs, opts.LogLevel).With("source", opts.Source)
	errs := make(chan errorEntry, 64)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		runLogWriter(out, logs)
	}()
	var errWg sync.WaitGroup
	errWg.Add(1)
	go func() {
		defer errWg.Done()
		runErrorHandler(errs, logger)
	}()
	defer func() {
		close(errs)
		errWg.Wait()
		close(logs)
		logWg.Wait()
	}()

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan Job, len(jobs))
	for _, j := range jobs {
		pending <- j
	}
	close(pending)

	results := make(chan JobResult, len(jobs))
	var st stats
	st.barsPerSymbol = make(map[string]int)
	var resWg sync.WaitGroup
	resWg.Add(1)
	go func() {
		defer resWg.Done()
		runJobResultCollector(results, &st)
	}()

	var hbWg sync.WaitGroup
	hbWg.Add(1)
	go func() {
		defer hbWg.Done()
		runHeartbeat(hbCtx, heartbeat, len(jobs), &st, logger)
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-pending:
					if !ok {
						return
					}
					results <- runJob(ctx, f, s, job, opts, logger, errs)
				}
			}
		}()
	}
	wg.Wait()
	close(results)
	resWg.Wait()
	cancel()
	// the heartbeat logs through logs; it must be gone before logs is closed
	hbWg.Wait()

	sum := st.summary()
	logger.Info("summary", "total_bars", sum.TotalBars, "success", sum.Success, "failed", sum.Failed)
	symbols := make([]string, 0, len(st.barsPerSymbol))
	for sym := range st.barsPerSymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		logger.Debug("summary symbol", "symbol", sym, "bars", st.barsPerSymbol[sym])
	}
	if len(sum.FailedList) > 0 {
		logger.Info("summary failed", "count", len(sum.FailedList), "reasons", joinFailedReasons(sum.FailedList))
	}

	if len(sum.SuccessList) > 0 || len(sum.FailedList) > 0 {
		dir := filepath.Join(opts.BaseDir, opts.Source)
		if err := writeRunReport(dir, sum.SuccessList, sum.FailedList); err != nil {
			logger.Warn("could not write run report", "error", err)
		}
	}
	return sum
}

func runJob(ctx context.Context, f fetch.TableFetcher, s saver.TableSaver, job Job, opts Options, logger *slog.Logger, errs chan<- errorEntry) JobResult {
	dateRange := job.From.UTC().Format(dateLayout) + ".." + job.To.UTC().Format(dateLayout)
	fail := func(reason string, err error) JobResult {
		logger.Error("fetch fail", "symbol", job.Symbol, "date_range", dateRange, "reason", reason)
		if err != nil {
			select {
			case errs <- errorEntry{Symbol: job.Symbol, Err: err}:
			default:
			}
		}
		return JobResult{Symbol: job.Symbol, DateRange: dateRange, Reason: reason}
	}

	table, err := f.Fetch(ctx, fetch.Request{
		Symbol:    job.Symbol,
		Start:     job.From,
		End:       job.To,
		Timeframe: opts.Timeframe,
		PageSize:  opts.PageSize,
	})
	if err != nil {
		return fail(err.Error(), err)
	}
	if table.Len() == 0 {
		return fail("no data", nil)
	}

	path := OutputPath(opts.BaseDir, opts.Source, job.Symbol, opts.Timeframe, job.From, job.To, s.Extension())
	if err := saver.SaveFile(s, table, path); err != nil {
		return fail(err.Error(), err)
	}
	logger.Info("fetch ok", "symbol", job.Symbol, "date_range", dateRange, "bars", table.Len(), "path", path)
	return JobResult{Ok: true, Symbol: job.Symbol, DateRange: dateRange, Bars: table.Len(), Path: path}
}

type stats struct {
	mu            sync.Mutex
	success       int
	failed        int
	barsPerSymbol map[string]int
	successList   []string
	failedList    []FailedEntry
}

func (s *stats) totalBars() int {
	var total int
	for _, n := range s.barsPerSymbol {
		total += n
	}
	return total
}

func (s *stats) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Success:     s.success,
		Failed:      s.failed,
		TotalBars:   s.totalBars(),
		SuccessList: s.successList,
		FailedList:  s.failedList,
	}
}

func runJobResultCollector(results <-chan JobResult, st *stats) {
	for r := range results {
		st.mu.Lock()
		if r.Ok {
			st.success++
			st.successList = appendSuccess(st.successList, r.Symbol)
			st.barsPerSymbol[r.Symbol] += r.Bars
		} else {
			st.failed++
			st.failedList = append(st.failedList, FailedEntry{Symbol: r.Symbol, DateRange: r.DateRange, Reason: r.Reason})
		}
		st.mu.Unlock()
	}
}
