// Package health periodically checks that the store is reachable.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/observability"
)

// Pinger is implemented by every store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings the store on a cron schedule and publishes the result as the
// store-up gauge.
type Monitor struct {
	store   Pinger
	timeout time.Duration
	log     logrus.FieldLogger
	cron    *cron.Cron

	mu    sync.Mutex
	known bool
	up    bool
}

// NewMonitor schedules the check. The schedule accepts the robfig descriptors
// such as "@every 30s".
func NewMonitor(store Pinger, schedule string, timeout time.Duration, log logrus.FieldLogger) (*Monitor, error) {
	m := &Monitor{
		store:   store,
		timeout: timeout,
		log:     log.WithField("component", "health"),
		cron:    cron.New(),
	}
	if _, err := m.cron.AddFunc(schedule, m.Check); err != nil {
		return nil, err
	}
	return m, nil
}

// Start runs an immediate check and then starts the scheduler.
func (m *Monitor) Start() {
	m.Check()
	m.cron.Start()
}

// Stop halts the scheduler and waits for a running check to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Check pings the store once.
func (m *Monitor) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := m.store.Ping(ctx)
	up := err == nil
	observability.RecordStoreUp(up)

	m.mu.Lock()
	changed := !m.known || m.up != up
	m.known, m.up = true, up
	m.mu.Unlock()

	if !changed {
		return
	}
	if up {
		m.log.Info("store reachable")
	} else {
		m.log.WithError(err).Error("store unreachable")
	}
}

// Up reports the result of the most recent check.
func (m *Monitor) Up() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.up
}
