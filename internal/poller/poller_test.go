package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/tachibana"
	"github.com/kabudata/tachibana-adapter/pkg/model"
)

// stepClock advances a fixed amount on every reading, which makes the pacing
// and cutoff decisions of the loop deterministic.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

type fakeFetcher struct {
	calls atomic.Int64
	fail  map[int64]error
}

func (f *fakeFetcher) GetMarketPrice(_ context.Context, codes []string) ([]model.QuoteSnapshot, error) {
	n := f.calls.Add(1)
	if err, ok := f.fail[n]; ok {
		return nil, err
	}
	snaps := make([]model.QuoteSnapshot, len(codes))
	for i, c := range codes {
		snaps[i] = model.QuoteSnapshot{IssueCode: c}
	}
	return snaps, nil
}

type fakeSink struct {
	rows atomic.Int64
}

func (s *fakeSink) InsertSnapshots(_ context.Context, snaps []model.QuoteSnapshot) error {
	s.rows.Add(int64(len(snaps)))
	return nil
}

func testConfig() Config {
	return Config{
		Interval:   60 * time.Millisecond,
		MaxWorkers: 4,
		Cutoff:     time.Date(0, 1, 1, 15, 0, 0, 0, time.UTC),
		Location:   time.UTC,
	}
}

func TestRunDrainsExactlyOnceAtCutoff(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := &fakeSink{}
	p := New(zap.NewNop(), testConfig(), fetcher, sink, nil)

	// Two readings per iteration; the third iteration starts past 15:00 and
	// becomes the single drain cycle.
	clock := &stepClock{t: time.Date(2026, 8, 31, 14, 59, 59, 800_000_000, time.UTC), step: 50 * time.Millisecond}
	p.now = clock.Now

	require.NoError(t, p.Run(context.Background(), []string{"1301", "1305"}))

	assert.Equal(t, int64(3), fetcher.calls.Load())
	cycles, errs, rows := p.Counts()
	assert.Equal(t, int64(3), cycles)
	assert.Equal(t, int64(0), errs)
	assert.Equal(t, int64(6), rows)
	assert.Equal(t, int64(6), sink.rows.Load())
	assert.Equal(t, StateIdle, p.State())
}

func TestRunContinuesAfterCycleError(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[int64]error{
		1: &tachibana.TransportError{Op: "market_price", Err: context.DeadlineExceeded},
	}}
	sink := &fakeSink{}
	p := New(zap.NewNop(), testConfig(), fetcher, sink, nil)

	clock := &stepClock{t: time.Date(2026, 8, 31, 14, 59, 59, 800_000_000, time.UTC), step: 50 * time.Millisecond}
	p.now = clock.Now

	require.NoError(t, p.Run(context.Background(), []string{"1301"}))

	cycles, errs, _ := p.Counts()
	assert.Equal(t, int64(3), fetcher.calls.Load())
	assert.Equal(t, int64(2), cycles)
	assert.Equal(t, int64(1), errs)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(zap.NewNop(), testConfig(), fetcher, &fakeSink{}, nil)

	// Hours away from cutoff; only cancellation can end the loop.
	clock := &stepClock{t: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), step: time.Millisecond}
	p.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := p.Run(ctx, []string{"1301"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, p.State())
}

func TestRunRejectsEmptyCodeList(t *testing.T) {
	p := New(zap.NewNop(), testConfig(), &fakeFetcher{}, &fakeSink{}, nil)
	assert.Error(t, p.Run(context.Background(), nil))
}

func TestAfterCutoff(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	cfg := testConfig()
	cfg.Location = jst
	p := New(zap.NewNop(), cfg, &fakeFetcher{}, &fakeSink{}, nil)

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2026, 8, 31, 14, 59, 59, 900_000_000, jst), false},
		{time.Date(2026, 8, 31, 15, 0, 0, 0, jst), true},
		{time.Date(2026, 8, 31, 15, 0, 0, 25_000_000, jst), true},
		// UTC instant that is past 15:00 in Tokyo.
		{time.Date(2026, 8, 31, 6, 30, 0, 0, time.UTC), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.afterCutoff(c.at), "at %s", c.at)
	}
}
