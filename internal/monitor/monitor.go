// Package monitor bridges connectivity and auth-session transitions into
// sync engine triggers. It owns the online/offline probe loop and reacts to
// session changes; it never mutates data itself.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wallethabit/affirmations/internal/common"
	"github.com/wallethabit/affirmations/internal/logging"
	"github.com/wallethabit/affirmations/internal/remote"
	"github.com/wallethabit/affirmations/internal/syncer"
)

// Mode is the user-visible connectivity/auth state.
type Mode string

const (
	// ModeGuest means no gateway is configured; everything is local-only.
	ModeGuest Mode = "guest"
	// ModeOffline means a gateway exists but is currently unreachable.
	ModeOffline Mode = "offline"
	// ModeOnline means the gateway is reachable.
	ModeOnline Mode = "online"
)

// Status is the observational snapshot exposed for display.
type Status struct {
	Mode          Mode
	Authenticated bool
	Pending       int
}

// Monitor watches the gateway and triggers flushes on session acquisition
// and on offline-to-online transitions while authenticated.
type Monitor struct {
	gw       remote.Gateway // nil in guest mode
	engine   *syncer.Engine
	log      logging.Logger
	interval time.Duration

	mu   sync.RWMutex
	mode Mode
}

// New constructs a monitor. gw may be nil (guest mode), in which case Start
// is a no-op and the mode stays guest.
func New(gw remote.Gateway, engine *syncer.Engine, log logging.Logger, interval time.Duration) *Monitor {
	mode := ModeGuest
	if gw != nil {
		mode = ModeOffline
	}
	return &Monitor{gw: gw, engine: engine, log: log, interval: interval, mode: mode}
}

// Mode returns the current connectivity mode.
func (m *Monitor) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Status returns the current mode together with the pending queue length.
func (m *Monitor) Status(ctx context.Context) (Status, error) {
	pending, err := m.engine.PendingCount(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Mode: m.Mode(), Authenticated: m.engine.Authenticated(), Pending: pending}, nil
}

// Start subscribes to session changes and runs the online probe loop until
// ctx is cancelled. Call it on its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	if m.gw == nil {
		return
	}

	m.gw.OnSessionChange(func(s *remote.Session) {
		if s == nil {
			m.log.Info(ctx, "session cleared")
			return
		}
		m.log.Info(ctx, "session acquired", "user", s.Email)
		// Pending items may be older than any pull, so flush first; the
		// flush itself ends with the reconciliation pull.
		m.triggerFlush(ctx, "session acquired")
	})

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := m.gw.Ping(pingCtx)
	cancel()

	if err != nil {
		m.setMode(ctx, ModeOffline)
		return
	}

	wasOffline := m.Mode() != ModeOnline
	m.setMode(ctx, ModeOnline)

	if wasOffline && m.engine.Authenticated() {
		m.triggerFlush(ctx, "back online")
	}
}

func (m *Monitor) setMode(ctx context.Context, mode Mode) {
	m.mu.Lock()
	changed := m.mode != mode
	m.mode = mode
	m.mu.Unlock()

	if changed {
		m.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (m *Monitor) triggerFlush(ctx context.Context, reason string) {
	res, err := m.engine.Flush(ctx)
	if errors.Is(err, common.ErrFlushInProgress) {
		return
	}
	if err != nil {
		m.log.Error(ctx, "flush failed", "reason", reason, "error", err)
		return
	}
	m.log.Info(ctx, "flush finished", "reason", reason,
		"succeeded", res.Succeeded, "failed", res.Failed, "pending", res.Pending, "pulled", res.Pulled)
}
