package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"crowd-dashboard/pkg/model"
)

// Sink receives every successfully decoded batch of samples.
type Sink interface {
	Update(ctx context.Context, samples model.Samples) (model.View, error)
}

// Parser is the single consumer of fetched bodies, so renders never run
// concurrently even when fetches overlap.
type Parser struct {
	ch      chan *Body
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sink    Sink
	metrics *metrics
	log     logrus.FieldLogger

	// 只在消费协程中读写
	lastTick uint64
}

func NewParser(ctx context.Context, sink Sink, m *metrics, log logrus.FieldLogger) *Parser {
	ctx, cancel := context.WithCancel(ctx)
	return &Parser{
		ch:      make(chan *Body, 16),
		ctx:     ctx,
		cancel:  cancel,
		sink:    sink,
		metrics: m,
		log:     log,
	}
}

func (p *Parser) start() {
	p.wg.Add(1)
	go p.consume()
}

func (p *Parser) produce(body *Body) error {
	if body == nil {
		return nil
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case p.ch <- body:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *Parser) consume() {
	defer p.wg.Done()
	for {
		select {
		case body := <-p.ch:
			if err := p.parse(body); err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{
					"url":  body.targetUrl,
					"tick": body.tick,
					"age":  time.Since(body.fetchedAt),
				}).Warn("tick aborted")
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// stop 不关闭 ch, 仍在进行的 tick 可能还会调用 produce
func (p *Parser) stop() {
	p.cancel()
	p.wg.Wait()
}

// parse decodes one body and hands the samples to the sink. Bodies older
// than the last rendered tick are dropped.
func (p *Parser) parse(body *Body) error {
	if body.tick <= p.lastTick {
		p.metrics.staleBodies.Inc()
		p.log.WithFields(logrus.Fields{
			"tick":     body.tick,
			"rendered": p.lastTick,
			"age":      time.Since(body.fetchedAt),
		}).Debug("dropping stale body")
		return nil
	}
	samples, err := Decode(body.data)
	if err != nil {
		p.metrics.failures.WithLabelValues(reasonDecode).Inc()
		return errors.Wrapf(err, "decode %s", body.targetUrl)
	}
	p.lastTick = body.tick
	if _, err := p.sink.Update(p.ctx, samples); err != nil {
		p.metrics.failures.WithLabelValues(reasonRender).Inc()
		return errors.Wrap(err, "render")
	}
	return nil
}

// wireSample keeps missing fields distinguishable from zero.
type wireSample struct {
	Time  *float64 `json:"time"`
	Count *float64 `json:"count"`
}

// Decode parses a JSON array of samples. Anything other than an array,
// including null, is rejected, and so is the whole batch when one element
// is null, lacks time or count, or has a count that is not a whole number.
func Decode(data []byte) (model.Samples, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Wrap(ErrDecode, "expected a JSON array")
	}
	var wire []*wireSample
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	samples := make(model.Samples, 0, len(wire))
	for i, w := range wire {
		switch {
		case w == nil:
			return nil, errors.Wrapf(ErrDecode, "sample %d is null", i)
		case w.Time == nil:
			return nil, errors.Wrapf(ErrDecode, "sample %d has no time", i)
		case w.Count == nil:
			return nil, errors.Wrapf(ErrDecode, "sample %d has no count", i)
		}
		count := *w.Count
		if count != math.Trunc(count) || math.Abs(count) > math.MaxInt32 {
			return nil, errors.Wrapf(ErrDecode, "sample %d: count %v is not a valid whole number", i, count)
		}
		samples = append(samples, model.Sample{Time: *w.Time, Count: int(count)})
	}
	return samples, nil
}
