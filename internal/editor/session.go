// Package editor owns the in-memory state of an open diagram.
//
// A Session is the single mutator of one project's nodes and edges. Every
// operation runs to completion under the session mutex, so observers never
// see a half-applied change. Edge routing is re-derived whenever node
// positions change, and every effective mutation schedules a debounced write
// through the Gateway.
package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/routing"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

// DefaultDebounce is the quiet window after the last mutation before a write.
const DefaultDebounce = time.Second

const defaultWriteTimeout = 10 * time.Second

var errSuperseded = appErr.New(appErr.CodeConflict, "load superseded by a newer load")

// Gateway is the durable project store the session reads from and writes to.
// Get must return an error coded not_found for an absent project.
type Gateway interface {
	Get(ctx context.Context, id string) (*diagram.Project, error)
	Put(ctx context.Context, p *diagram.Project) error
}

// ProjectInfo is the project metadata without the node and edge sets.
type ProjectInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Project   *ProjectInfo   `json:"project"`
	Nodes     []diagram.Node `json:"nodes"`
	Edges     []diagram.Edge `json:"edges"`
	IsLoading bool           `json:"isLoading"`
	Version   uint64         `json:"version"`
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func WithScheduler(sch Scheduler) Option { return func(s *Session) { s.sched = sch } }

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

func WithDebounce(d time.Duration) Option { return func(s *Session) { s.debounce = d } }

func WithWriteTimeout(d time.Duration) Option { return func(s *Session) { s.writeTimeout = d } }

// Session holds one open diagram.
type Session struct {
	gateway      Gateway
	log          *zap.Logger
	sched        Scheduler
	now          func() time.Time
	debounce     time.Duration
	writeTimeout time.Duration

	mu      sync.Mutex
	project *ProjectInfo
	nodes   []diagram.Node
	edges   []diagram.Edge
	loading bool
	loadGen uint64
	version uint64
	closed  bool

	// debounced save; a fired timer commits only while saveGen still matches
	writeMu sync.Mutex
	saveGen uint64
	pending bool
	timer   Timer

	subs    map[uint64]chan struct{}
	nextSub uint64
}

// New returns an empty session writing through gw.
func New(gw Gateway, opts ...Option) *Session {
	s := &Session{
		gateway:      gw,
		sched:        wallScheduler{},
		now:          time.Now,
		debounce:     DefaultDebounce,
		writeTimeout: defaultWriteTimeout,
		nodes:        []diagram.Node{},
		edges:        []diagram.Edge{},
		subs:         map[uint64]chan struct{}{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.Named("editor")
	}
	return s
}

// Load replaces the session state with project id read from the gateway and
// re-routes every edge against the loaded layout. A pending write for the
// previous state is flushed first. Failures leave the session empty and are
// only logged: callers detect not-found as Project() == nil after Load.
// A load superseded by a later Load call is discarded.
func (s *Session) Load(ctx context.Context, id string) {
	_ = s.load(ctx, id)
}

// load is Load reporting the read error, or errSuperseded when a later load
// won the race.
func (s *Session) load(ctx context.Context, id string) error {
	s.flush()

	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.loading = true
	s.changedLocked()
	s.mu.Unlock()

	p, err := s.gateway.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.log.Debug("discarding superseded project load", zap.String("project_id", id))
		return errSuperseded
	}
	s.loading = false
	// the incoming state supersedes anything scheduled while the read was in flight
	s.cancelSaveLocked()
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			s.log.Warn("project not found", zap.String("project_id", id))
		} else {
			s.log.Error("project load failed", zap.String("project_id", id), zap.Error(err))
		}
		s.project = nil
		s.nodes = []diagram.Node{}
		s.edges = []diagram.Edge{}
		s.changedLocked()
		return err
	}

	s.project = &ProjectInfo{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	s.nodes = diagram.CloneNodes(p.Nodes)
	s.edges = routing.Repair(p.Edges, s.nodes)
	s.changedLocked()
	s.log.Info("project loaded",
		zap.String("project_id", p.ID),
		zap.Int("nodes", len(s.nodes)),
		zap.Int("edges", len(s.edges)),
	)
	return nil
}

// IsLoading reports whether a Load is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Project returns a copy of the open project including nodes and edges, or
// nil if none is loaded.
func (s *Session) Project() *diagram.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	return s.projectLocked()
}

// Nodes returns a copy of the current nodes.
func (s *Session) Nodes() []diagram.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return diagram.CloneNodes(s.nodes)
}

// Edges returns a copy of the current edges.
func (s *Session) Edges() []diagram.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return diagram.CloneEdges(s.edges)
}

// Snapshot returns a consistent copy of the whole state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Nodes:     diagram.CloneNodes(s.nodes),
		Edges:     diagram.CloneEdges(s.edges),
		IsLoading: s.loading,
		Version:   s.version,
	}
	if s.project != nil {
		info := *s.project
		snap.Project = &info
	}
	return snap
}

// Subscribe returns a channel that receives a signal after state transitions.
// Signals coalesce; read Snapshot after each one. The channel is closed when
// the session closes.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// SaveNow writes the current project immediately, cancelling any pending
// debounced write. It is a no-op without a loaded project.
func (s *Session) SaveNow(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		return nil
	}
	s.cancelSaveLocked()
	p := s.stampLocked()
	s.mu.Unlock()

	return s.gateway.Put(ctx, p)
}

// Close flushes a pending write and releases subscribers. Mutations after
// Close still apply in memory but are never persisted.
func (s *Session) Close() {
	s.flush()
	s.shutdown()
}

// Discard drops a pending write without persisting it and closes the session.
// Used when the project was deleted underneath the session.
func (s *Session) Discard() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.cancelSaveLocked()
	s.mu.Unlock()
	s.shutdown()
}

func (s *Session) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// mutate runs fn under the lock. When fn reports a change, observers are
// signalled and a save is scheduled.
func (s *Session) mutate(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn() {
		return false
	}
	s.changedLocked()
	s.scheduleSaveLocked()
	return true
}

func (s *Session) changedLocked() {
	s.version++
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) projectLocked() *diagram.Project {
	return &diagram.Project{
		ID:        s.project.ID,
		Name:      s.project.Name,
		CreatedAt: s.project.CreatedAt,
		UpdatedAt: s.project.UpdatedAt,
		Nodes:     diagram.CloneNodes(s.nodes),
		Edges:     diagram.CloneEdges(s.edges),
	}
}

// stampLocked refreshes updatedAt to the write-time clock and returns the
// record to persist.
func (s *Session) stampLocked() *diagram.Project {
	s.project.UpdatedAt = s.now()
	s.changedLocked()
	return s.projectLocked()
}
