package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktdata/internal/model"
)

// scriptedSource replays pages in order and records every call.
type scriptedSource struct {
	pages  []Page
	errs   map[int]error
	max    int
	calls  int
	tokens []string
	reqs   []Request
}

func (s *scriptedSource) Name() string           { return "scripted" }
func (s *scriptedSource) Timeframes() []string   { return []string{"1Min", "1Hour", "1Day"} }
func (s *scriptedSource) ExtraColumns() []string { return []string{"trade_count"} }

func (s *scriptedSource) MaxPageSize() int {
	if s.max == 0 {
		return 10000
	}
	return s.max
}

func (s *scriptedSource) FetchPage(_ context.Context, req Request, token string) (Page, error) {
	s.calls++
	s.tokens = append(s.tokens, token)
	s.reqs = append(s.reqs, req)
	if err, ok := s.errs[s.calls]; ok {
		return Page{}, err
	}
	if s.calls > len(s.pages) {
		return Page{}, nil
	}
	return s.pages[s.calls-1], nil
}

func makeBars(start, n int) []model.Bar {
	base := time.Date(2021, 2, 8, 9, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		v := decimal.NewFromInt(int64(start + i))
		bars[i] = model.Bar{
			Timestamp: base.Add(time.Duration(start+i) * time.Minute),
			Open:      v, High: v, Low: v, Close: v, Volume: v,
			Extra: []string{fmt.Sprint(start + i)},
		}
	}
	return bars
}

func validRequest() Request {
	return Request{
		Symbol:    "AAPL",
		Start:     time.Date(2021, 2, 8, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2021, 2, 8, 23, 59, 59, 0, time.UTC),
		Timeframe: "1Hour",
	}
}

func TestFetchMergesPagesInArrivalOrder(t *testing.T) {
	src := &scriptedSource{
		max: 3,
		pages: []Page{
			{Bars: makeBars(0, 3), NextToken: "t1"},
			{Bars: makeBars(3, 3), NextToken: "t2"},
			{Bars: makeBars(6, 2)},
		},
	}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 8, table.Len())
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, []string{"", "t1", "t2"}, src.tokens)
	for i, b := range table.Bars {
		assert.Equal(t, fmt.Sprint(i), b.Extra[0], "row %d out of order", i)
	}
	assert.Equal(t, []string{"timestamp", "open", "high", "low", "close", "volume", "trade_count"}, table.Columns())
}

func TestFetchSinglePageNoToken(t *testing.T) {
	src := &scriptedSource{pages: []Page{{Bars: makeBars(0, 7)}}}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 7, table.Len())
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, model.BaseColumns, table.Columns()[:6])
}

func TestFetchTwoLargePages(t *testing.T) {
	src := &scriptedSource{pages: []Page{
		{Bars: makeBars(0, 10000), NextToken: "tok1"},
		{Bars: makeBars(10000, 3421)},
	}}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 13421, table.Len())
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, "tok1", src.tokens[1])
}

func TestFetchEmptyFirstPage(t *testing.T) {
	src := &scriptedSource{pages: []Page{{}}}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 1, src.calls)
}

func TestFetchEmptyFirstPageWithTokenStops(t *testing.T) {
	src := &scriptedSource{pages: []Page{
		{NextToken: "nonsense"},
		{Bars: makeBars(0, 5)},
	}}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 1, src.calls)
}

func TestFetchStopsOnEmptyPageAfterToken(t *testing.T) {
	src := &scriptedSource{pages: []Page{
		{Bars: makeBars(0, 4), NextToken: "t1"},
		{NextToken: "t2"},
		{Bars: makeBars(4, 4)},
	}}

	table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, 2, src.calls)
}

func TestFetchInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"unsupported timeframe", func(r *Request) { r.Timeframe = "5Min" }},
		{"start after end", func(r *Request) { r.Start, r.End = r.End, r.Start }},
		{"empty symbol", func(r *Request) { r.Symbol = "" }},
		{"page size above max", func(r *Request) { r.PageSize = 10001 }},
		{"negative page size", func(r *Request) { r.PageSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{pages: []Page{{Bars: makeBars(0, 1)}}}
			req := validRequest()
			tt.mutate(&req)

			_, err := NewFetcher(src, nil).Fetch(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Zero(t, src.calls)

			_, err = NewDaySplitter(src, nil).Fetch(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Zero(t, src.calls)
		})
	}
}

func TestFetchDefaultsPageSizeToSourceMax(t *testing.T) {
	src := &scriptedSource{max: 500, pages: []Page{{Bars: makeBars(0, 1)}}}

	_, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 500, src.reqs[0].PageSize)
}

func TestFetchPropagatesPageErrors(t *testing.T) {
	for _, sentinel := range []error{ErrTransport, ErrParse} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			src := &scriptedSource{
				pages: []Page{{Bars: makeBars(0, 2), NextToken: "t1"}},
				errs:  map[int]error{2: fmt.Errorf("%w: boom", sentinel)},
			}

			table, err := NewFetcher(src, nil).Fetch(context.Background(), validRequest())
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, sentinel))
			assert.Equal(t, 2, src.calls)
		})
	}
}

func TestFetchIsIdempotent(t *testing.T) {
	pages := []Page{
		{Bars: makeBars(0, 3), NextToken: "t1"},
		{Bars: makeBars(3, 1)},
	}

	first, err := NewFetcher(&scriptedSource{pages: pages}, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := NewFetcher(&scriptedSource{pages: pages}, nil).Fetch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNextState(t *testing.T) {
	assert.Equal(t, stateInit, nextState(true, false))
	assert.Equal(t, stateContinue, nextState(false, true))
	assert.Equal(t, stateStop, nextState(false, false))
	assert.Equal(t, stateStop, nextState(true, true))
	assert.Equal(t, "continue", stateContinue.String())
}
