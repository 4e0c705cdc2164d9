package diagram

// NodeChangeType tags one entry of a node change-set emitted by the canvas.
type NodeChangeType string

const (
	NodeChangeAdd        NodeChangeType = "add"
	NodeChangeRemove     NodeChangeType = "remove"
	NodeChangeReplace    NodeChangeType = "replace"
	NodeChangePosition   NodeChangeType = "position"
	NodeChangeDimensions NodeChangeType = "dimensions"
	NodeChangeSelect     NodeChangeType = "select"
)

// NodeChange is one structural change to the node list. Which fields are
// meaningful depends on Type.
type NodeChange struct {
	Type NodeChangeType `json:"type" validate:"required,oneof=add remove replace position dimensions select"`
	ID   string         `json:"id,omitempty"`

	// position
	Position *Position `json:"position,omitempty"`
	Dragging *bool     `json:"dragging,omitempty"`

	// dimensions
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
	Resizing      *bool       `json:"resizing,omitempty"`
	SetAttributes bool        `json:"setAttributes,omitempty"`

	// select
	Selected bool `json:"selected,omitempty"`

	// add, replace
	Item *Node `json:"item,omitempty"`
}

// InDrag reports whether the change is a position update of an active drag.
func (c NodeChange) InDrag() bool {
	return c.Type == NodeChangePosition && c.Dragging != nil && *c.Dragging
}

// EdgeChangeType tags one entry of an edge change-set.
type EdgeChangeType string

const (
	EdgeChangeAdd     EdgeChangeType = "add"
	EdgeChangeRemove  EdgeChangeType = "remove"
	EdgeChangeReplace EdgeChangeType = "replace"
	EdgeChangeSelect  EdgeChangeType = "select"
)

// EdgeChange is one structural change to the edge list.
type EdgeChange struct {
	Type     EdgeChangeType `json:"type" validate:"required,oneof=add remove replace select"`
	ID       string         `json:"id,omitempty"`
	Selected bool           `json:"selected,omitempty"`
	Item     *Edge          `json:"item,omitempty"`
}

// Connection is a connection attempt drawn by the user between two column handles.
type Connection struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// NodeUpdate is a shallow partial of a node's root fields. Nil means untouched.
type NodeUpdate struct {
	Position *Position   `json:"position,omitempty"`
	Style    *Style      `json:"style,omitempty"`
	Measured *Dimensions `json:"measured,omitempty"`
	Selected *bool       `json:"selected,omitempty"`
}

// NodeDataUpdate is a shallow partial of a node's data. A nil Columns leaves
// the column list untouched.
type NodeDataUpdate struct {
	Label   *string  `json:"label,omitempty"`
	Color   *Color   `json:"color,omitempty" validate:"omitempty,nodecolor"`
	Columns []Column `json:"columns,omitempty" validate:"omitempty,dive"`
}

// ColumnUpdate is a partial column, merged by id.
type ColumnUpdate struct {
	Name *string     `json:"name,omitempty"`
	Type *ColumnType `json:"type,omitempty" validate:"omitempty,columntype"`
	IsPk *bool       `json:"isPk,omitempty"`
	IsFk *bool       `json:"isFk,omitempty"`
}
