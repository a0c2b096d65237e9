package scrape

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"crowd-dashboard/pkg/config"
	"crowd-dashboard/pkg/model"
)

// Scraper polls the crowd endpoint on a fixed interval. Each tick fetches
// in its own goroutine so a slow response never delays the next tick.
type Scraper struct {
	targetUrl string
	interval  time.Duration
	timeout   time.Duration

	client  *resty.Client
	parser  *Parser
	metrics *metrics
	log     logrus.FieldLogger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	tick    atomic.Uint64
	started atomic.Bool
}

type Option func(*options)

type options struct {
	client     *resty.Client
	registerer prometheus.Registerer
	log        logrus.FieldLogger
}

func WithRestyClient(c *resty.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NewScraper expects a config already run through Process.
func NewScraper(cfg *config.Config, sink Sink, opts ...Option) (*Scraper, error) {
	o := &options{
		registerer: prometheus.NewRegistry(),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = resty.New()
	}
	if cfg.Global.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be > 0, got %v", cfg.Global.PollInterval)
	}
	timeout := cfg.Global.PollTimeout
	if timeout <= 0 {
		timeout = cfg.Global.PollInterval
	}

	labels := model.LabelsFromMap(cfg.Endpoint.Labels)
	m, err := newMetrics(o.registerer, prometheus.Labels(labels.Map()))
	if err != nil {
		return nil, errors.Wrap(err, "register scrape metrics")
	}
	log := o.log.WithField("url", cfg.Endpoint.URL)
	if len(labels) > 0 {
		log = log.WithField("labels", labels.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scraper{
		targetUrl: cfg.Endpoint.URL,
		interval:  cfg.Global.PollInterval,
		timeout:   timeout,
		client:    o.client,
		parser:    NewParser(ctx, sink, m, log),
		metrics:   m,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start launches the ticker and returns immediately. The first tick fires
// one interval after Start.
func (s *Scraper) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	s.parser.start()
	s.wg.Add(1)
	go s.run()
	s.log.WithField("interval", s.interval).Info("scraper started")
	return nil
}

// Stop cancels the ticker and every in-flight fetch, then waits for all
// of them and the parser to return.
func (s *Scraper) Stop() error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	s.cancel()
	s.wg.Wait()
	s.parser.stop()
	s.log.Info("scraper stopped")
	return nil
}

func (s *Scraper) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.tick.Add(1)
			s.wg.Add(1)
			go s.scrape(n)
		case <-s.ctx.Done():
			return
		}
	}
}

// scrape runs one tick. Any failure is logged and counted here and
// never reaches the ticker loop.
func (s *Scraper) scrape(n uint64) {
	defer s.wg.Done()
	s.metrics.polls.Inc()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	data, err := s.Fetch(ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		reason := reasonFetch
		if errors.Is(err, ErrUnexpectedStatus) {
			reason = reasonStatus
		}
		s.metrics.failures.WithLabelValues(reason).Inc()
		s.log.WithError(err).WithFields(logrus.Fields{
			"tick":   n,
			"reason": reason,
		}).Warn("tick aborted")
		return
	}
	_ = s.parser.produce(NewBody(n, s.targetUrl, data, time.Now()))
}

// Fetch issues a single GET against the endpoint and returns the body of
// a 2xx response.
func (s *Scraper) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(s.targetUrl)
	s.metrics.fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", s.targetUrl)
	}
	if !resp.IsSuccess() {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "fetch %s: %d %s",
			s.targetUrl, resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}
	return resp.Body(), nil
}

func (s *Scraper) Ticks() uint64 {
	return s.tick.Load()
}
