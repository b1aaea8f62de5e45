package database

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Monitor pings the database periodically and remembers the last outcome.
// The store only counts as up once the prepare step, if any, has
// succeeded against it.
type Monitor struct {
	db       *gorm.DB
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
	up       atomic.Bool
	onChange func(up bool)

	prepare  func(ctx context.Context) error
	prepared atomic.Bool
}

// NewMonitor creates a monitor. onChange, if set, is called after every
// check with the current state.
func NewMonitor(db *gorm.DB, interval, timeout time.Duration, log *zap.Logger, onChange func(up bool)) *Monitor {
	return &Monitor{db: db, interval: interval, timeout: timeout, log: log, onChange: onChange}
}

// OnFirstConnect registers work, such as migrations, that must succeed
// once before the store is reported up. It is retried on every check
// until it succeeds. Call it before Check or Run.
func (m *Monitor) OnFirstConnect(prepare func(ctx context.Context) error) {
	m.prepare = prepare
}

// Up reports the outcome of the latest check
func (m *Monitor) Up() bool {
	return m.up.Load()
}

// Check pings once and records the result
func (m *Monitor) Check(ctx context.Context) bool {
	err := Ping(ctx, m.db, m.timeout)
	if err == nil && m.prepare != nil && !m.prepared.Load() {
		if err = m.prepare(ctx); err != nil {
			m.log.Error("Database preparation failed", zap.Error(err))
		} else {
			m.prepared.Store(true)
		}
	}
	up := err == nil
	if was := m.up.Swap(up); was != up {
		if up {
			m.log.Info("Database connection available")
		} else {
			m.log.Warn("Database unavailable", zap.Error(err))
		}
	}
	if m.onChange != nil {
		m.onChange(up)
	}
	return up
}

// Run checks immediately and then every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
