// Package diagram holds the entity-relationship diagram data model: projects,
// table nodes, their columns and the relationship edges between columns.
package diagram

import "time"

// NodeTypeTable is the only node kind the editor renders.
const NodeTypeTable = "table"

// Project is the top-level persisted unit.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
}

// Position is a node's top-left corner in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is a measured or requested size.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style carries an explicit node size. Nil fields mean "fit to content".
type Style struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Column is one row of a table node. ID is stable across renames and reorders.
type Column struct {
	ID   string     `json:"id" validate:"required"`
	Name string     `json:"name"`
	Type ColumnType `json:"type" validate:"columntype"`
	IsPk bool       `json:"isPk"`
	IsFk bool       `json:"isFk"`
}

// TableData is the payload of a table node.
type TableData struct {
	Label   string   `json:"label"`
	Color   Color    `json:"color,omitempty" validate:"omitempty,nodecolor"`
	Columns []Column `json:"columns" validate:"dive"`
}

// Node is a table on the canvas.
type Node struct {
	ID       string      `json:"id" validate:"required"`
	Type     string      `json:"type,omitempty"`
	Position Position    `json:"position"`
	Data     TableData   `json:"data"`
	Style    *Style      `json:"style,omitempty"`
	Measured *Dimensions `json:"measured,omitempty"`
	Selected bool        `json:"selected,omitempty"`
	Dragging bool        `json:"dragging,omitempty"`
}

// Edge is a directed relationship from a column of Source to a column of Target.
// The handles encode both the attachment side and the referenced column id.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
	Selected     bool   `json:"selected,omitempty"`
}

// CenterX is the horizontal center of the node. An unmeasured node has zero width.
func (n Node) CenterX() float64 {
	var w float64
	if n.Measured != nil {
		w = n.Measured.Width
	}
	return n.Position.X + w/2
}

// Column returns the column with the given id.
func (n Node) Column(id string) (Column, bool) {
	for _, c := range n.Data.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Touches reports whether the edge has nodeID as either endpoint.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// IndexNodes maps node ids to nodes.
func IndexNodes(nodes []Node) map[string]Node {
	out := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out
}
