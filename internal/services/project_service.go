package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/editor"
	"github.com/erd-studio/engine/internal/repository"
	"github.com/erd-studio/engine/internal/templates"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

// ProjectService backs the project dashboard. Deletion bypasses open editor
// sessions; the Evictor drops a session of a deleted project before its
// pending write could recreate the record.
type ProjectService interface {
	CreateProject(ctx context.Context, input *CreateProjectInput) (*diagram.Project, error)
	GetProject(ctx context.Context, projectID string) (*diagram.Project, error)
	ListProjects(ctx context.Context, filters *ProjectFilters) ([]ProjectSummary, int, error)
	DeleteProject(ctx context.Context, projectID string) error
	RepairProject(ctx context.Context, projectID string) (*RepairResult, error)
}

// Evictor is implemented by *editor.Registry.
type Evictor interface {
	Evict(projectID string)
}

type CreateProjectInput struct {
	Name     string
	Template templates.Name
}

type ProjectFilters struct {
	Page     int
	PageSize int
}

// ProjectSummary is a dashboard row.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tables    int       `json:"tables"`
	Relations int       `json:"relations"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RepairResult reports a routing repair pass.
type RepairResult struct {
	Project *diagram.Project `json:"project"`
	Changed int              `json:"changed"`
}

type projectService struct {
	store     repository.Gateway
	generator *templates.Generator
	evictor   Evictor
	now       func() time.Time
	newID     func() string
}

// NewProjectService wires the dashboard operations. evictor may be nil when
// no editor sessions live in the process.
func NewProjectService(store repository.Gateway, generator *templates.Generator, evictor Evictor) ProjectService {
	if generator == nil {
		generator = templates.New()
	}
	return &projectService{
		store:     store,
		generator: generator,
		evictor:   evictor,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)
var _ Evictor = (*editor.Registry)(nil)

func (s *projectService) CreateProject(ctx context.Context, input *CreateProjectInput) (*diagram.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = diagram.DefaultProjectName
	}
	logger.L().Info("create project called", zap.String("name", name), zap.String("template", string(input.Template)))

	nodes, edges, err := s.generator.Generate(input.Template)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &diagram.Project{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Nodes:     nodes,
		Edges:     edges,
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("project created", zap.String("project_id", p.ID), zap.Int("tables", len(nodes)))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string) (*diagram.Project, error) {
	return s.store.Get(ctx, projectID)
}

func (s *projectService) ListProjects(ctx context.Context, filters *ProjectFilters) ([]ProjectSummary, int, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })

	total := len(all)
	if filters != nil && filters.PageSize > 0 {
		page := max(filters.Page, 1)
		start := min((page-1)*filters.PageSize, total)
		end := min(start+filters.PageSize, total)
		all = all[start:end]
	}

	out := make([]ProjectSummary, 0, len(all))
	for _, p := range all {
		out = append(out, ProjectSummary{
			ID:        p.ID,
			Name:      p.Name,
			Tables:    len(p.Nodes),
			Relations: len(p.Edges),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return out, total, nil
}

func (s *projectService) DeleteProject(ctx context.Context, projectID string) error {
	logger.L().Info("delete project", zap.String("project_id", projectID))
	if _, err := s.store.Get(ctx, projectID); err != nil {
		return err
	}
	if s.evictor != nil {
		s.evictor.Evict(projectID)
	}
	if err := s.store.Delete(ctx, projectID); err != nil {
		return err
	}
	logger.L().Info("project deleted", zap.String("project_id", projectID))
	return nil
}

// RepairProject opens the project in a throwaway session, which re-routes
// every edge, and writes the result back.
func (s *projectService) RepairProject(ctx context.Context, projectID string) (*RepairResult, error) {
	before, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	session := editor.New(s.store, editor.WithClock(s.now))
	defer session.Discard()
	session.Load(ctx, projectID)
	after := session.Project()
	if after == nil {
		return nil, appErr.NotFound("project", projectID)
	}

	changed := 0
	old := make(map[string]diagram.Edge, len(before.Edges))
	for _, e := range before.Edges {
		old[e.ID] = e
	}
	for _, e := range after.Edges {
		if prev, ok := old[e.ID]; !ok || prev != e {
			changed++
		}
	}
	if changed == 0 {
		return &RepairResult{Project: after}, nil
	}

	if err := session.SaveNow(ctx); err != nil {
		return nil, err
	}
	logger.L().Info("project routing repaired", zap.String("project_id", projectID), zap.Int("changed", changed))
	return &RepairResult{Project: session.Project(), Changed: changed}, nil
}
