package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erd-studio/engine/pkg/logger"
)

// DefaultIdleTimeout is how long an unobserved session stays open.
const DefaultIdleTimeout = 10 * time.Minute

// DefaultLoadTimeout bounds the shared read that opens a session.
const DefaultLoadTimeout = 30 * time.Second

// Registry keeps one Session per open project for a long-running process.
type Registry struct {
	newSession  func() *Session
	idle        time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	session  *Session
	ready    chan struct{}
	err      error
	lastUsed time.Time
}

// NewRegistry returns a registry building sessions with newSession. A
// non-positive idle uses DefaultIdleTimeout.
func NewRegistry(newSession func() *Session, idle time.Duration, log *zap.Logger) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if log == nil {
		log = logger.Named("registry")
	}
	return &Registry{
		newSession:  newSession,
		idle:        idle,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		log:         log,
		entries:     map[string]*entry{},
	}
}

// Open returns the session for project id, loading it on first use.
// Concurrent callers for the same id share one load, which is not tied to any
// caller's ctx: a caller that gives up does not fail the others. A project
// that cannot be loaded is not kept and the gateway error is returned.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		e.lastUsed = r.now()
	} else {
		e = &entry{session: r.newSession(), ready: make(chan struct{}), lastUsed: r.now()}
		r.entries[id] = e
		go r.load(context.WithoutCancel(ctx), id, e)
	}
	r.mu.Unlock()

	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.session, nil
}

func (r *Registry) load(ctx context.Context, id string, e *entry) {
	ctx, cancel := context.WithTimeout(ctx, r.loadTimeout)
	defer cancel()

	e.err = e.session.load(ctx, id)
	if e.err != nil {
		r.mu.Lock()
		if r.entries[id] == e {
			delete(r.entries, id)
		}
		r.mu.Unlock()
		e.session.Discard()
	} else {
		r.log.Debug("session opened", zap.String("project_id", id))
	}
	close(e.ready)
}

// Touch marks project id as used now.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.lastUsed = r.now()
	}
}

// Evict drops the session for id without persisting its pending write.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	<-e.ready
	e.session.Discard()
	r.log.Debug("session evicted", zap.String("project_id", id))
}

// Sweep closes sessions idle longer than the idle timeout that have no
// subscribers, and reports how many were closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)
	var stale []*entry

	r.mu.Lock()
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.lastUsed.After(cutoff) || e.session.subscribers() > 0 {
			continue
		}
		delete(r.entries, id)
		stale = append(stale, e)
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.session.Close()
	}
	if len(stale) > 0 {
		r.log.Info("idle sessions closed", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll flushes and closes every open session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = map[string]*entry{}
	r.mu.Unlock()

	for _, e := range entries {
		<-e.ready
		e.session.Close()
	}
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
