package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/poller"
)

const (
	subjectCycleError     = "evt.md.cycle_error.v1.TACHIBANA"
	subjectSessionSummary = "evt.md.session_summary.v1.TACHIBANA"
)

// Publisher emits operational events to JetStream. It is optional
// infrastructure; the polling flow runs unchanged without it.
type Publisher struct {
	logger  *zap.Logger
	nc      *nats.Conn
	js      nats.JetStreamContext
	service string
}

func New(logger *zap.Logger, url, service string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(service),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	logger.Info("publisher.connected", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{logger: logger, nc: nc, js: js, service: service}, nil
}

func (p *Publisher) publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{"X-Source": []string{p.service}},
	}
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) PublishCycleError(ctx context.Context, ev poller.CycleErrorEvent) error {
	return p.publish(ctx, subjectCycleError, ev)
}

func (p *Publisher) PublishSessionSummary(ctx context.Context, ev poller.SessionSummaryEvent) error {
	return p.publish(ctx, subjectSessionSummary, ev)
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
