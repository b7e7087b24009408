// Package syncer reconciles local and remote state under intermittent
// connectivity and an auth session that can appear and disappear.
//
// Every save is write-first: the local store reflects the mutation before any
// network attempt, and a failed or impossible remote call turns into a queued
// mutation instead of an error. Flushing drains the queue in insertion order
// and finishes with a full reconciliation pull, which is the conflict
// resolution step: the last successful pull from remote wins wholesale.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wallethabit/affirmations/internal/common"
	"github.com/wallethabit/affirmations/internal/logging"
	"github.com/wallethabit/affirmations/internal/models"
	"github.com/wallethabit/affirmations/internal/remote"
	"github.com/wallethabit/affirmations/internal/store"
	"github.com/wallethabit/affirmations/internal/streak"
)

// Engine mediates between the local store and the remote gateway.
type Engine struct {
	store *store.Store
	gw    remote.Gateway // nil in guest mode
	log   logging.Logger
	now   func() time.Time

	// flushMu makes a flush a mutually exclusive critical section; a second
	// trigger while one is in flight is a no-op.
	flushMu sync.Mutex
}

// Option customizes the engine.
type Option func(*Engine)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs the engine. gw may be nil, which is guest mode: every
// mutation routes to the queue.
func New(st *store.Store, gw remote.Gateway, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{store: st, gw: gw, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authenticated reports whether a remote session is usable right now.
func (e *Engine) Authenticated() bool {
	return e.gw != nil && e.gw.GetSession().Valid(e.now())
}

// PendingCount returns the number of queued mutations.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.store.Queue.Len(ctx)
}

// SaveAffirmation persists the affirmation locally, then either applies it
// remotely (reconciling the canonical copy back) or enqueues it. The local
// write is unconditional; remote failures never surface as errors here.
func (e *Engine) SaveAffirmation(ctx context.Context, a models.Affirmation, action models.Action) (models.Affirmation, error) {
	if err := e.store.Affirmations.Upsert(ctx, a); err != nil {
		return models.Affirmation{}, err
	}

	if !e.Authenticated() {
		return a, e.enqueue(ctx, models.EntityAffirmation, action, stripAffirmation(a))
	}

	canonical, err := e.pushAffirmation(ctx, a, action)
	if err != nil {
		e.log.Warn(ctx, "remote save failed, queued", "entity", "affirmation", "id", a.ID, "error", err)
		return a, e.enqueue(ctx, models.EntityAffirmation, action, stripAffirmation(a))
	}
	if err := e.store.Affirmations.Upsert(ctx, *canonical); err != nil {
		return models.Affirmation{}, err
	}
	return *canonical, nil
}

// LogSession persists a practice session locally, recomputes the cached
// streak from local history, then syncs or enqueues the session.
func (e *Engine) LogSession(ctx context.Context, s models.Session) (models.Session, streak.Result, error) {
	if err := e.store.Sessions.Upsert(ctx, s); err != nil {
		return models.Session{}, streak.Result{}, err
	}

	local, err := e.store.Sessions.List(ctx)
	if err != nil {
		return models.Session{}, streak.Result{}, err
	}
	res := streak.Compute(local, e.now())
	if err := e.cacheStreak(ctx, res); err != nil {
		return models.Session{}, streak.Result{}, err
	}

	if !e.Authenticated() {
		return s, res, e.enqueue(ctx, models.EntitySession, models.ActionCreate, stripSession(s))
	}

	canonical, err := e.gw.LogSession(ctx, withUser(s, e.userID()))
	if err != nil {
		e.log.Warn(ctx, "remote save failed, queued", "entity", "session", "id", s.ID, "error", err)
		return s, res, e.enqueue(ctx, models.EntitySession, models.ActionCreate, stripSession(s))
	}
	if err := e.store.Sessions.Upsert(ctx, *canonical); err != nil {
		return models.Session{}, streak.Result{}, err
	}
	return *canonical, res, nil
}

// SaveSettings persists the settings locally, then upserts them remotely or
// enqueues the update.
func (e *Engine) SaveSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	if err := e.store.Settings.Save(ctx, s); err != nil {
		return models.Settings{}, err
	}

	if !e.Authenticated() {
		return s, e.enqueue(ctx, models.EntitySettings, models.ActionUpdate, stripSettings(s))
	}

	canonical, err := e.gw.UpsertSettings(ctx, settingsWithUser(s, e.userID()))
	if err != nil {
		e.log.Warn(ctx, "remote save failed, queued", "entity", "settings", "error", err)
		return s, e.enqueue(ctx, models.EntitySettings, models.ActionUpdate, stripSettings(s))
	}
	if err := e.store.Settings.Save(ctx, *canonical); err != nil {
		return models.Settings{}, err
	}
	return *canonical, nil
}

// FlushResult summarizes one flush attempt.
type FlushResult struct {
	// CaughtUp is true when there was nothing to flush.
	CaughtUp bool
	// Skipped is true when the flush was not attempted (no session).
	Skipped bool

	Attempted int
	Succeeded int
	Failed    int
	// Pending is the queue length after the attempt.
	Pending int
	// Pulled reports whether the post-flush reconciliation pull succeeded.
	Pulled bool
}

// Flush drains the queue against the gateway in insertion order
// (best-effort-all: a failing item is kept, later items are still attempted,
// relative order is preserved), then performs the reconciliation pull.
// Overlapping flush triggers are no-ops returning ErrFlushInProgress.
func (e *Engine) Flush(ctx context.Context) (FlushResult, error) {
	if !e.flushMu.TryLock() {
		return FlushResult{}, common.ErrFlushInProgress
	}
	defer e.flushMu.Unlock()

	items, err := e.store.Queue.List(ctx)
	if err != nil {
		return FlushResult{}, err
	}

	if len(items) == 0 {
		res := FlushResult{CaughtUp: true}
		if e.Authenticated() {
			res.Pulled = e.reconcile(ctx) == nil
		}
		return res, nil
	}

	if !e.Authenticated() {
		e.log.Info(ctx, "flush skipped, not authenticated", "pending", len(items))
		return FlushResult{Skipped: true, Pending: len(items)}, nil
	}

	res := FlushResult{Attempted: len(items)}
	uid := e.userID()
	for _, item := range items {
		if err := e.applyItem(ctx, uid, item); err != nil {
			e.log.Warn(ctx, "queued item failed, will retry", "seq", item.Seq, "type", item.Type, "error", err)
			res.Failed++
			continue
		}
		if err := e.store.Queue.Delete(ctx, item.Seq); err != nil {
			return res, err
		}
		res.Succeeded++
	}

	res.Pending, err = e.store.Queue.Len(ctx)
	if err != nil {
		return res, err
	}

	// Already-drained items are not rolled back on pull failure; the next
	// trigger retries the pull.
	res.Pulled = e.reconcile(ctx) == nil
	return res, nil
}

// applyItem reattaches the current user id and dispatches one queued
// mutation to the matching gateway call, writing the canonical result back.
func (e *Engine) applyItem(ctx context.Context, userID string, item models.QueueItem) error {
	switch item.Type {
	case models.EntityAffirmation:
		var a models.Affirmation
		if err := json.Unmarshal(item.Payload, &a); err != nil {
			return fmt.Errorf("bad queue payload: %w", err)
		}
		a.UserID = userID
		canonical, err := e.pushAffirmation(ctx, a, item.Action)
		if err != nil {
			return err
		}
		return e.store.Affirmations.Upsert(ctx, *canonical)

	case models.EntitySession:
		var s models.Session
		if err := json.Unmarshal(item.Payload, &s); err != nil {
			return fmt.Errorf("bad queue payload: %w", err)
		}
		s.UserID = userID
		canonical, err := e.gw.LogSession(ctx, s)
		if err != nil {
			return err
		}
		return e.store.Sessions.Upsert(ctx, *canonical)

	case models.EntitySettings:
		var s models.Settings
		if err := json.Unmarshal(item.Payload, &s); err != nil {
			return fmt.Errorf("bad queue payload: %w", err)
		}
		s.UserID = userID
		canonical, err := e.gw.UpsertSettings(ctx, s)
		if err != nil {
			return err
		}
		return e.store.Settings.Save(ctx, *canonical)

	default:
		return fmt.Errorf("unknown queue entity type %q", item.Type)
	}
}

func (e *Engine) pushAffirmation(ctx context.Context, a models.Affirmation, action models.Action) (*models.Affirmation, error) {
	if action == models.ActionCreate {
		return e.gw.CreateAffirmation(ctx, a)
	}
	return e.gw.UpdateAffirmation(ctx, a.ID, a)
}

// reconcile performs the full remote-to-local pull: the fetched lists replace
// the local collections wholesale and the streak is recomputed from the
// canonical session history.
func (e *Engine) reconcile(ctx context.Context) error {
	affirmations, err := e.gw.ListAffirmations(ctx)
	if err != nil {
		e.log.Error(ctx, "reconciliation pull failed", "error", err)
		return err
	}
	sessions, err := e.gw.ListSessions(ctx)
	if err != nil {
		e.log.Error(ctx, "reconciliation pull failed", "error", err)
		return err
	}

	if err := e.store.Affirmations.ReplaceAll(ctx, affirmations); err != nil {
		return err
	}
	if err := e.store.Sessions.ReplaceAll(ctx, sessions); err != nil {
		return err
	}

	// Settings may legitimately not exist yet for a fresh user.
	settings, err := e.gw.GetSettings(ctx)
	switch {
	case err == nil:
		if err := e.store.Settings.Save(ctx, *settings); err != nil {
			return err
		}
	case isNotFound(err):
		// keep the local record
	default:
		e.log.Warn(ctx, "settings pull failed", "error", err)
	}

	res := streak.Compute(sessions, e.now())
	if err := e.cacheStreak(ctx, res); err != nil {
		return err
	}

	if err := e.store.Meta.Set(ctx, store.MetaLastSyncAt, []byte(e.now().UTC().Format(time.RFC3339))); err != nil {
		return err
	}

	e.log.Info(ctx, "reconciled from remote",
		"affirmations", len(affirmations), "sessions", len(sessions), "streak", res.Streak)
	return nil
}

// Streak returns the cached streak snapshot, or a zero result when nothing
// has been cached yet.
func (e *Engine) Streak(ctx context.Context) (streak.Result, error) {
	b, err := e.store.Meta.Get(ctx, store.MetaStreakCache)
	if err != nil {
		return streak.Result{}, err
	}
	if len(b) == 0 {
		return streak.Result{}, nil
	}
	var res streak.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return streak.Result{}, fmt.Errorf("bad streak cache: %w", err)
	}
	return res, nil
}

func (e *Engine) cacheStreak(ctx context.Context, res streak.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return e.store.Meta.Set(ctx, store.MetaStreakCache, b)
}

func (e *Engine) enqueue(ctx context.Context, t models.EntityType, action models.Action, payload any) error {
	item, err := models.NewQueueItem(t, action, payload, e.now())
	if err != nil {
		return err
	}
	if _, err := e.store.Queue.Enqueue(ctx, item); err != nil {
		return err
	}
	return nil
}

func (e *Engine) userID() string {
	if e.gw == nil {
		return ""
	}
	if s := e.gw.GetSession(); s != nil {
		return s.UserID
	}
	return ""
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

// payloads are enqueued with user_id stripped; the then-current user id is
// reattached at flush time.
func stripAffirmation(a models.Affirmation) models.Affirmation { a.UserID = ""; return a }
func stripSession(s models.Session) models.Session             { s.UserID = ""; return s }
func stripSettings(s models.Settings) models.Settings          { s.UserID = ""; return s }

func withUser(s models.Session, uid string) models.Session           { s.UserID = uid; return s }
func settingsWithUser(s models.Settings, uid string) models.Settings { s.UserID = uid; return s }
