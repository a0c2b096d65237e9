// Package alert mails an overcrowding notice when the latest people count
// exceeds the capacity of the watched area.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"crowd-dashboard/pkg/config"
	"crowd-dashboard/pkg/model"
)

const Subject = "Crowd Alert Notification"

var ErrClosed = errors.New("alerter closed")

// Capacity is how many people fit in areaSqft when each needs
// minSpacePerPerson square feet.
func Capacity(areaSqft, minSpacePerPerson int) int {
	if minSpacePerPerson <= 0 {
		return 0
	}
	return areaSqft / minSpacePerPerson
}

type Alerter struct {
	areaSqft    int
	capacity    int
	cooldown    time.Duration
	sendTimeout time.Duration
	mailer      Mailer
	loc         *time.Location
	now         func() time.Time
	log         logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastSent time.Time
	sending  bool
	closed   bool
}

func NewAlerter(cfg config.AlertConfig, mailer Mailer, loc *time.Location, log logrus.FieldLogger) *Alerter {
	if loc == nil {
		loc = time.Local
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = config.DefaultAlertSendTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Alerter{
		areaSqft:    cfg.AreaSqft,
		capacity:    Capacity(cfg.AreaSqft, cfg.MinSpacePerPerson),
		cooldown:    cfg.Cooldown,
		sendTimeout: sendTimeout,
		mailer:      mailer,
		loc:         loc,
		now:         time.Now,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (a *Alerter) Name() string {
	return "alert"
}

func (a *Alerter) Capacity() int {
	return a.capacity
}

func (a *Alerter) Overcrowded(count int) bool {
	return count > a.capacity
}

// Render starts at most one mail per cooldown while the view is over
// capacity and returns without waiting for it. Only one send is in flight
// at a time; the cooldown only starts after a mail went out.
func (a *Alerter) Render(_ context.Context, v model.View) error {
	if !a.Overcrowded(v.Latest) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	now := a.now()
	if a.sending {
		a.log.WithField("count", v.Latest).Debug("overcrowded, alert already in flight")
		return nil
	}
	if !a.lastSent.IsZero() && now.Sub(a.lastSent) < a.cooldown {
		a.log.WithField("count", v.Latest).Debug("overcrowded, alert in cooldown")
		return nil
	}
	a.sending = true
	a.wg.Add(1)
	go a.send(v.Latest, now)
	return nil
}

func (a *Alerter) send(count int, at time.Time) {
	defer a.wg.Done()
	ctx, cancel := context.WithTimeout(a.ctx, a.sendTimeout)
	defer cancel()
	err := a.mailer.Send(ctx, Subject, a.body(count, at))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sending = false
	if err != nil {
		a.log.WithError(err).WithField("count", count).Warn("overcrowding alert failed")
		return
	}
	a.lastSent = at
	a.log.WithFields(logrus.Fields{
		"count":    count,
		"capacity": a.capacity,
	}).Info("overcrowding alert sent")
}

// Close aborts an in-flight send and waits for it to return.
func (a *Alerter) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.cancel()
	a.wg.Wait()
	return nil
}

func (a *Alerter) body(count int, at time.Time) string {
	body := fmt.Sprintf("High crowd density detected: %d people at %s\nMax capacity: %d people",
		count, at.In(a.loc).Format("15:04:05"), a.capacity)
	if a.areaSqft > 0 {
		body += fmt.Sprintf("\nDensity: %.2f per sq ft", float64(count)/float64(a.areaSqft))
	}
	return body
}
