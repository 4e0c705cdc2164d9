package types

import (
	"encoding/json"

	"github.com/erd-studio/engine/internal/diagram"
)

type ProjectCreateRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Template string `json:"template" validate:"omitempty,oneof=blank saas"`
}

// Diagram command types accepted by the command endpoint and the live channel.
const (
	CmdNodesChanges   = "nodes.changes"
	CmdEdgesChanges   = "edges.changes"
	CmdConnect        = "connect"
	CmdNodeAdd        = "node.add"
	CmdNodeUpdate     = "node.update"
	CmdNodeDataUpdate = "node.data.update"
	CmdNodeDelete     = "node.delete"
	CmdColumnAdd      = "column.add"
	CmdColumnUpdate   = "column.update"
	CmdColumnDelete   = "column.delete"
	CmdProjectRename  = "project.rename"
)

// Command is one diagram mutation. Payload is decoded according to Type.
type Command struct {
	Type    string          `json:"type" validate:"required,oneof=nodes.changes edges.changes connect node.add node.update node.data.update node.delete column.add column.update column.delete project.rename"`
	Payload json.RawMessage `json:"payload"`
}

type NodeChangesPayload struct {
	Changes []diagram.NodeChange `json:"changes" validate:"required,dive"`
}

type EdgeChangesPayload struct {
	Changes []diagram.EdgeChange `json:"changes" validate:"required,dive"`
}

// NodeAddPayload adds Node as given, or a default table at Position when Node is nil.
type NodeAddPayload struct {
	Node     *diagram.Node     `json:"node,omitempty"`
	Position *diagram.Position `json:"position,omitempty"`
}

type NodeUpdatePayload struct {
	ID     string             `json:"id" validate:"required"`
	Update diagram.NodeUpdate `json:"update"`
}

type NodeDataUpdatePayload struct {
	ID     string                 `json:"id" validate:"required"`
	Update diagram.NodeDataUpdate `json:"update"`
}

type NodeDeletePayload struct {
	ID string `json:"id" validate:"required"`
}

// ColumnAddPayload adds Column, or a default column when nil.
type ColumnAddPayload struct {
	NodeID string          `json:"nodeId" validate:"required"`
	Column *diagram.Column `json:"column,omitempty"`
}

type ColumnUpdatePayload struct {
	NodeID   string               `json:"nodeId" validate:"required"`
	ColumnID string               `json:"columnId" validate:"required"`
	Update   diagram.ColumnUpdate `json:"update"`
}

type ColumnDeletePayload struct {
	NodeID   string `json:"nodeId" validate:"required"`
	ColumnID string `json:"columnId" validate:"required"`
}

type ProjectRenamePayload struct {
	Name string `json:"name" validate:"required,max=200"`
}
