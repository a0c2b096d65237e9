// Package dashboard owns the people count display and chart. It derives a
// view from each batch of samples and pushes it to every render surface.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"crowd-dashboard/pkg/model"
	"crowd-dashboard/pkg/storage"
)

var ErrNotInitialized = errors.New("dashboard not initialized")

// Surface is one place the view gets drawn.
type Surface interface {
	Name() string
	Render(ctx context.Context, v model.View) error
}

type Dashboard struct {
	formatter model.TimeFormatter
	options   model.ChartOptions
	storage   storage.Storage
	surfaces  []Surface
	log       logrus.FieldLogger
	now       func() time.Time

	// 保证同一时刻只有一次渲染
	mu          sync.Mutex
	initialized bool
}

type Option func(*Dashboard)

func WithSurfaces(surfaces ...Surface) Option {
	return func(d *Dashboard) {
		d.surfaces = append(d.surfaces, surfaces...)
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Dashboard) {
		d.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		d.now = now
	}
}

func New(store storage.Storage, formatter model.TimeFormatter, opts ...Option) *Dashboard {
	d := &Dashboard{
		formatter: formatter,
		options:   model.DefaultChartOptions(),
		storage:   store,
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init renders the empty view: "People Count: 0" and no chart points.
// Calling it again resets the dashboard.
func (d *Dashboard) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := model.EmptyView(d.now())
	if err := d.storage.Replace(&v); err != nil {
		return err
	}
	d.initialized = true
	d.log.WithField("surfaces", len(d.surfaces)).Info("dashboard initialized")
	return d.draw(ctx, v)
}

// Update replaces the displayed state with one derived from samples.
// A failing surface does not stop the others; their errors are joined
// into the returned error after the view has been stored.
func (d *Dashboard) Update(ctx context.Context, samples model.Samples) (model.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return model.View{}, ErrNotInitialized
	}
	v := model.NewView(samples, d.formatter, d.now())
	if err := d.storage.Replace(&v); err != nil {
		return v, err
	}
	return v, d.draw(ctx, v)
}

func (d *Dashboard) draw(ctx context.Context, v model.View) error {
	var errs []error
	for _, s := range d.surfaces {
		if err := s.Render(ctx, v); err != nil {
			d.log.WithError(err).WithField("surface", s.Name()).Warn("render failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// View returns the last rendered view.
func (d *Dashboard) View() (model.View, error) {
	return d.storage.Current()
}

func (d *Dashboard) Options() model.ChartOptions {
	return d.options
}
