package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktdata/internal/fetch"
	"mktdata/internal/transport"
)

const oneDay = `[
  [1625875200000,"310.10000000","312.00000000","309.50000000","311.20000000","1520.33000000",1625878799999,"472615.12000000",1843,"801.00000000","249010.50000000","0"],
  [1625878800000,"311.20000000","313.40000000","310.80000000","313.00000000","998.10000000",1625882399999,"311502.77000000",1201,"500.40000000","156120.90000000","0"]
]`

func TestFetchDaySplitKlines(t *testing.T) {
	var queries []map[string]string
	var apiKeys []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, klinesPath, r.URL.Path)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		queries = append(queries, q)
		apiKeys = append(apiKeys, r.Header.Get(headerAPIKey))
		_, _ = w.Write([]byte(oneDay))
	}))
	defer ts.Close()

	src := NewSource(Config{APIKey: "k", BaseURL: ts.URL}, transport.New(transport.Options{}))
	req := fetch.Request{
		Symbol:    "BNBBUSD",
		Start:     time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2021, 7, 11, 23, 59, 59, 999000000, time.UTC),
		Timeframe: "1h",
	}

	table, err := fetch.NewDaySplitter(src, nil).Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{
		"timestamp", "open", "high", "low", "close", "volume",
		"close_time", "quote_asset_volume", "number_of_trades",
		"taker_buy_base_asset_volume", "taker_buy_quote_asset_volume", "ignore",
	}, table.Columns())

	b := table.Bars[0]
	assert.Equal(t, time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC), b.Timestamp)
	assert.Equal(t, "310.1", b.Open.String())
	assert.Equal(t, "1520.33", b.Volume.String())
	assert.Equal(t, []string{"1625878799999", "472615.12000000", "1843", "801.00000000", "249010.50000000", "0"}, b.Extra)

	require.Len(t, queries, 2)
	assert.Equal(t, "1625875200000", queries[0]["startTime"])
	assert.Equal(t, "1625961599999", queries[0]["endTime"])
	assert.Equal(t, "1625961600000", queries[1]["startTime"])
	assert.Equal(t, "1000", queries[0]["limit"])
	assert.Equal(t, "1h", queries[0]["interval"])
	assert.Equal(t, "BNBBUSD", queries[0]["symbol"])
	assert.Equal(t, []string{"k", "k"}, apiKeys)
}

func TestFetchPageResumesFromToken(t *testing.T) {
	var startTimes []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTimes = append(startTimes, r.URL.Query().Get("startTime"))
		_, _ = w.Write([]byte(oneDay))
	}))
	defer ts.Close()

	src := NewSource(Config{BaseURL: ts.URL}, transport.New(transport.Options{}))
	req := fetch.Request{
		Symbol: "BNBBUSD", Timeframe: "1h", PageSize: 2,
		Start: time.UnixMilli(1625875200000), End: time.UnixMilli(1625961599999),
	}

	page, err := src.FetchPage(context.Background(), req, "")
	require.NoError(t, err)
	assert.Len(t, page.Bars, 2)
	assert.Equal(t, "1625878800001", page.NextToken)

	_, err = src.FetchPage(context.Background(), req, page.NextToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"1625875200000", "1625878800001"}, startTimes)

	req.PageSize = 1000
	page, err = src.FetchPage(context.Background(), req, "")
	require.NoError(t, err)
	assert.Empty(t, page.NextToken)

	_, err = src.FetchPage(context.Background(), req, "not-a-time")
	assert.ErrorIs(t, err, fetch.ErrInvalidArgument)
}

// klineServer holds one bar per minute from first and honours
// startTime, endTime and limit like the real endpoint.
func klineServer(t *testing.T, first time.Time, bars int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		startMs, _ := strconv.ParseInt(q.Get("startTime"), 10, 64)
		endMs, _ := strconv.ParseInt(q.Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(q.Get("limit"))

		var rows []string
		for i := 0; i < bars && len(rows) < limit; i++ {
			open := first.Add(time.Duration(i) * time.Minute).UnixMilli()
			if open < startMs || open > endMs {
				continue
			}
			rows = append(rows, fmt.Sprintf(`[%d,"1","1","1","1","1",%d,"1",1,"1","1","0"]`, open, open+59999))
		}
		_, _ = w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetchFullMinuteDay(t *testing.T) {
	day := time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC)
	ts := klineServer(t, day, 1440)

	src := NewSource(Config{BaseURL: ts.URL}, transport.New(transport.Options{}))
	table, err := fetch.NewFetcher(src, nil).Fetch(context.Background(), fetch.Request{
		Symbol:    "BNBBUSD",
		Timeframe: "1m",
		Start:     day,
		End:       day.Add(24*time.Hour - time.Millisecond),
	})
	require.NoError(t, err)

	require.Equal(t, 1440, table.Len())
	for i, b := range table.Bars {
		require.Equal(t, day.Add(time.Duration(i)*time.Minute), b.Timestamp)
	}
}

func TestFetchTransportErrorKeepsCause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSource(Config{BaseURL: "http://127.0.0.1:1"}, transport.New(transport.Options{}))
	_, err := src.FetchPage(ctx, fetch.Request{
		Symbol: "BNBBUSD", Timeframe: "1h", PageSize: 1000,
		Start: time.UnixMilli(1625875200000), End: time.UnixMilli(1625961599999),
	}, "")
	assert.ErrorIs(t, err, fetch.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer ts.Close()

	src := NewSource(Config{BaseURL: ts.URL}, transport.New(transport.Options{}))
	req := fetch.Request{
		Symbol:    "NOPE",
		Start:     time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2021, 7, 10, 0, 0, 0, 0, time.UTC),
		Timeframe: "1d",
	}
	_, err := fetch.NewDaySplitter(src, nil).Fetch(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrParse)
	assert.Contains(t, err.Error(), "400")
}

func TestParseKlineWrongArity(t *testing.T) {
	_, err := parsePage(&transport.Response{StatusCode: 200, Status: "200 OK", Body: []byte(`[[1625875200000,"1","2"]]`)})
	assert.ErrorIs(t, err, fetch.ErrParse)
}

func TestEmptyPage(t *testing.T) {
	page, err := parsePage(&transport.Response{StatusCode: 200, Status: "200 OK", Body: []byte(`[]`)})
	require.NoError(t, err)
	assert.Empty(t, page.Bars)
}

func TestUnsupportedInterval(t *testing.T) {
	src := NewSource(Config{}, transport.New(transport.Options{}))
	_, err := fetch.NewDaySplitter(src, nil).Fetch(context.Background(), fetch.Request{
		Symbol: "BNBBUSD", Timeframe: "7m",
		Start: time.Now(), End: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, fetch.ErrInvalidArgument)
	assert.Len(t, src.Timeframes(), 15)
	assert.Equal(t, DefaultBaseURL, src.cfg.BaseURL)
}
