package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/metrics"
	"github.com/kabudata/tachibana-adapter/internal/tachibana"
	"github.com/kabudata/tachibana-adapter/pkg/model"
)

// State of the polling loop. The loop moves Idle -> Polling at startup and
// Polling -> Draining exactly once when the session cutoff is crossed. In
// Draining exactly one more cycle is dispatched, then the loop waits for
// in-flight cycles and stops.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateDraining
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateDraining:
		return "draining"
	default:
		return "idle"
	}
}

// QuoteFetcher is the venue side of a cycle.
type QuoteFetcher interface {
	GetMarketPrice(ctx context.Context, codes []string) ([]model.QuoteSnapshot, error)
}

// SnapshotSink is the persistence side of a cycle.
type SnapshotSink interface {
	InsertSnapshots(ctx context.Context, snaps []model.QuoteSnapshot) error
}

// EventSink receives cycle error and session summary events. Nil disables
// publishing.
type EventSink interface {
	PublishCycleError(ctx context.Context, ev CycleErrorEvent) error
	PublishSessionSummary(ctx context.Context, ev SessionSummaryEvent) error
}

type CycleErrorEvent struct {
	EventID string    `json:"event_id"`
	CycleID string    `json:"cycle_id"`
	Stage   string    `json:"stage"`
	Kind    string    `json:"kind"`
	Error   string    `json:"error"`
	At      time.Time `json:"at"`
}

type SessionSummaryEvent struct {
	EventID string    `json:"event_id"`
	Cycles  int64     `json:"cycles"`
	Errors  int64     `json:"errors"`
	Rows    int64     `json:"rows"`
	At      time.Time `json:"at"`
}

type Config struct {
	Interval     time.Duration
	MaxWorkers   int
	FetchTimeout time.Duration
	// Cutoff carries the session close as a time of day; only its hour and
	// minute are read.
	Cutoff   time.Time
	Location *time.Location
}

// Poller drives the fetch/persist loop at a fixed cadence. Scheduling is
// self-paced: each iteration sleeps the interval minus the time the dispatch
// itself took, so slow iterations do not shift the grid. Cycles run on a
// bounded worker pool and may complete out of order.
type Poller struct {
	logger  *zap.Logger
	cfg     Config
	fetcher QuoteFetcher
	sink    SnapshotSink
	events  EventSink

	now func() time.Time
	sem chan struct{}
	wg  sync.WaitGroup

	state  atomic.Int32
	cycles atomic.Int64
	errs   atomic.Int64
	rows   atomic.Int64
}

func New(logger *zap.Logger, cfg Config, fetcher QuoteFetcher, sink SnapshotSink, events EventSink) *Poller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Poller{
		logger:  logger,
		cfg:     cfg,
		fetcher: fetcher,
		sink:    sink,
		events:  events,
		now:     time.Now,
		sem:     make(chan struct{}, cfg.MaxWorkers),
	}
}

func (p *Poller) State() State { return State(p.state.Load()) }

// Counts reports successful cycles, failed cycles and persisted rows.
func (p *Poller) Counts() (cycles, errs, rows int64) {
	return p.cycles.Load(), p.errs.Load(), p.rows.Load()
}

// afterCutoff compares the wall clock against the cutoff as a time of day in
// the market timezone. Date components are ignored.
func (p *Poller) afterCutoff(t time.Time) bool {
	local := t.In(p.cfg.Location)
	cur := local.Hour()*3600 + local.Minute()*60 + local.Second()
	cut := p.cfg.Cutoff.Hour()*3600 + p.cfg.Cutoff.Minute()*60
	return cur >= cut
}

// Run polls until the cutoff is crossed, dispatches one final drain cycle,
// waits for in-flight cycles and returns. A cancelled context stops the loop
// without the drain cycle.
func (p *Poller) Run(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return errors.New("poller: no target codes")
	}

	p.state.Store(int32(StatePolling))
	defer p.state.Store(int32(StateIdle))

	p.logger.Info("poller.session_started",
		zap.Int("codes", len(codes)),
		zap.Duration("interval", p.cfg.Interval),
		zap.Int("max_workers", p.cfg.MaxWorkers),
		zap.String("cutoff", p.cfg.Cutoff.Format("15:04")))

	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		default:
		}

		start := p.now()
		if p.afterCutoff(start) {
			p.state.Store(int32(StateDraining))
			p.logger.Info("poller.cutoff_reached", zap.Time("at", start))
			p.dispatch(ctx, codes)
			break
		}

		p.dispatch(ctx, codes)

		if wait := p.cfg.Interval - p.now().Sub(start); wait > 0 {
			select {
			case <-ctx.Done():
				p.wg.Wait()
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	p.wg.Wait()

	cycles, errs, rows := p.Counts()
	p.logger.Info("poller.session_complete",
		zap.Int64("cycles", cycles),
		zap.Int64("errors", errs),
		zap.Int64("rows", rows))
	p.publishSummary(ctx)
	return nil
}

func (p *Poller) dispatch(ctx context.Context, codes []string) {
	cycleID := uuid.NewString()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-p.sem }()
		p.runCycle(ctx, cycleID, codes)
	}()
}

func (p *Poller) runCycle(ctx context.Context, cycleID string, codes []string) {
	cctx := ctx
	if p.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, p.cfg.FetchTimeout)
		defer cancel()
	}

	snaps, err := p.fetcher.GetMarketPrice(cctx, codes)
	if err != nil {
		p.fail(ctx, cycleID, "fetch", err)
		return
	}
	if err := p.sink.InsertSnapshots(cctx, snaps); err != nil {
		p.fail(ctx, cycleID, "persist", err)
		return
	}

	p.cycles.Add(1)
	p.rows.Add(int64(len(snaps)))
	metrics.IncCycleOK(len(snaps))
	p.logger.Debug("poller.cycle_complete",
		zap.String("cycle_id", cycleID),
		zap.Int("rows", len(snaps)))
}

// fail records a cycle failure. The loop itself keeps running; one bad cycle
// never ends the session.
func (p *Poller) fail(ctx context.Context, cycleID, stage string, err error) {
	kind := tachibana.Kind(err)
	p.errs.Add(1)
	metrics.IncCycleError(kind)
	p.logger.Warn("poller.cycle_error",
		zap.String("cycle_id", cycleID),
		zap.String("stage", stage),
		zap.String("kind", kind),
		zap.Error(err))

	if p.events == nil {
		return
	}
	ev := CycleErrorEvent{
		EventID: uuid.NewString(),
		CycleID: cycleID,
		Stage:   stage,
		Kind:    kind,
		Error:   err.Error(),
		At:      p.now(),
	}
	if perr := p.events.PublishCycleError(ctx, ev); perr != nil {
		metrics.IncPublishError()
		p.logger.Warn("poller.publish_failed", zap.Error(perr))
	}
}

func (p *Poller) publishSummary(ctx context.Context) {
	if p.events == nil {
		return
	}
	cycles, errs, rows := p.Counts()
	ev := SessionSummaryEvent{
		EventID: uuid.NewString(),
		Cycles:  cycles,
		Errors:  errs,
		Rows:    rows,
		At:      p.now(),
	}
	if err := p.events.PublishSessionSummary(ctx, ev); err != nil {
		metrics.IncPublishError()
		p.logger.Warn("poller.publish_failed", zap.Error(err))
	}
}
