package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/erd-studio/engine/internal/diagram"
)

// Project is the relational row of a diagram project. Nodes and edges are
// stored as JSON documents in the shape the editor exchanges with clients.
type Project struct {
	ID        string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Nodes     datatypes.JSON `json:"nodes"`
	Edges     datatypes.JSON `json:"edges"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false;index" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// NewProject encodes a diagram project into a row.
func NewProject(p *diagram.Project) (*Project, error) {
	nodes, err := json.Marshal(diagram.CloneNodes(p.Nodes))
	if err != nil {
		return nil, err
	}
	edges, err := json.Marshal(diagram.CloneEdges(p.Edges))
	if err != nil {
		return nil, err
	}
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		Nodes:     datatypes.JSON(nodes),
		Edges:     datatypes.JSON(edges),
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}, nil
}

// Diagram decodes the row. Empty documents decode to empty sets.
func (m *Project) Diagram() (*diagram.Project, error) {
	out := &diagram.Project{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
		Nodes:     []diagram.Node{},
		Edges:     []diagram.Edge{},
	}
	if len(m.Nodes) > 0 {
		if err := json.Unmarshal(m.Nodes, &out.Nodes); err != nil {
			return nil, err
		}
	}
	if len(m.Edges) > 0 {
		if err := json.Unmarshal(m.Edges, &out.Edges); err != nil {
			return nil, err
		}
	}
	if out.Nodes == nil {
		out.Nodes = []diagram.Node{}
	}
	if out.Edges == nil {
		out.Edges = []diagram.Edge{}
	}
	return out, nil
}
