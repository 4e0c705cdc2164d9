package editor

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/erd-studio/engine/internal/diagram"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

var writeTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// manualScheduler collects timers and runs them only when told to.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.timers = append(m.timers, t)
	return t
}

// Fire runs every timer that was neither stopped nor fired and reports how many ran.
func (m *manualScheduler) Fire() int {
	return m.run(false)
}

// FireStale also runs stopped timers, as a racing wall clock might.
func (m *manualScheduler) FireStale() int {
	return m.run(true)
}

func (m *manualScheduler) run(includeStopped bool) int {
	m.mu.Lock()
	var due []func()
	for _, t := range m.timers {
		t.mu.Lock()
		if !t.fired && (includeStopped || !t.stopped) {
			t.fired = true
			due = append(due, t.f)
		}
		t.mu.Unlock()
	}
	m.mu.Unlock()
	for _, f := range due {
		f()
	}
	return len(due)
}

func (m *manualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		t.mu.Lock()
		if !t.fired && !t.stopped {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// fakeGateway is an in-memory Gateway recording every write.
type fakeGateway struct {
	mu       sync.Mutex
	projects map[string]*diagram.Project
	puts     []*diagram.Project
	gets     int
	getErr   error
	putErr   error
	block    map[string]chan struct{}
}

func newFakeGateway(ps ...*diagram.Project) *fakeGateway {
	g := &fakeGateway{projects: map[string]*diagram.Project{}, block: map[string]chan struct{}{}}
	for _, p := range ps {
		g.projects[p.ID] = p.Clone()
	}
	return g
}

func (g *fakeGateway) Get(ctx context.Context, id string) (*diagram.Project, error) {
	g.mu.Lock()
	g.gets++
	gate := g.block[id]
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	p, ok := g.projects[id]
	if !ok {
		return nil, appErr.NotFound("project", id)
	}
	return p.Clone(), nil
}

func (g *fakeGateway) Put(_ context.Context, p *diagram.Project) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.puts = append(g.puts, p.Clone())
	if g.putErr != nil {
		return g.putErr
	}
	g.projects[p.ID] = p.Clone()
	return nil
}

func (g *fakeGateway) Puts() []*diagram.Project {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*diagram.Project(nil), g.puts...)
}

func (g *fakeGateway) Gets() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gets
}

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func newTestSession(gw Gateway, opts ...Option) (*Session, *manualScheduler) {
	sched := &manualScheduler{}
	base := []Option{
		WithScheduler(sched),
		WithClock(func() time.Time { return writeTime }),
	}
	return New(gw, append(base, opts...)...), sched
}

func tableNode(id string, x, width float64, columnIDs ...string) diagram.Node {
	cols := make([]diagram.Column, 0, len(columnIDs))
	for _, c := range columnIDs {
		cols = append(cols, diagram.Column{ID: c, Name: c, Type: diagram.ColumnUUID})
	}
	return diagram.Node{
		ID:       id,
		Type:     diagram.NodeTypeTable,
		Position: diagram.Position{X: x},
		Data:     diagram.TableData{Label: id, Columns: cols},
		Measured: &diagram.Dimensions{Width: width, Height: 120},
	}
}

// fixture has three tables and two edges: A.a1 -> B.b1 and A.a2 -> C.c1.
// Handles are stored stale to exercise the load-time repair.
func fixture() *diagram.Project {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &diagram.Project{
		ID:        "p1",
		Name:      "shop",
		CreatedAt: created,
		UpdatedAt: created,
		Nodes: []diagram.Node{
			tableNode("A", 0, 200, "a1", "a2"),
			tableNode("B", 500, 200, "b1"),
			tableNode("C", -600, 200, "c1"),
		},
		Edges: []diagram.Edge{
			{ID: "e1", Source: "A", Target: "B", SourceHandle: "sl-a1", TargetHandle: "tr-b1"},
			{ID: "e2", Source: "A", Target: "C", SourceHandle: "a2", TargetHandle: "c1"},
		},
	}
}
