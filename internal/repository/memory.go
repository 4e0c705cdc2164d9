package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/erd-studio/engine/internal/diagram"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

// MemoryGateway keeps projects in process memory. Used for tests and the
// "memory" storage driver.
type MemoryGateway struct {
	mu       sync.RWMutex
	projects map[string]*diagram.Project
}

var _ Gateway = (*MemoryGateway)(nil)

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{projects: map[string]*diagram.Project{}}
}

func (g *MemoryGateway) GetAll(_ context.Context) ([]*diagram.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*diagram.Project, 0, len(g.projects))
	for _, p := range g.projects {
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (g *MemoryGateway) Get(_ context.Context, id string) (*diagram.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.projects[id]
	if !ok {
		return nil, appErr.NotFound("project", id)
	}
	return p.Clone(), nil
}

func (g *MemoryGateway) Put(_ context.Context, p *diagram.Project) error {
	if p == nil || p.ID == "" {
		return appErr.New(appErr.CodeInvalid, "project id is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.projects[p.ID] = p.Clone()
	return nil
}

func (g *MemoryGateway) UpdateIfNewer(_ context.Context, p *diagram.Project) (bool, error) {
	if p == nil || p.ID == "" {
		return false, appErr.New(appErr.CodeInvalid, "project id is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	cur, ok := g.projects[p.ID]
	if !ok {
		return false, appErr.NotFound("project", p.ID)
	}
	if cur.UpdatedAt.After(p.UpdatedAt) {
		return false, nil
	}
	g.projects[p.ID] = p.Clone()
	return true, nil
}

func (g *MemoryGateway) Delete(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.projects, id)
	return nil
}
