package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/erd-studio/engine/internal/api/types"
	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/editor"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

// ConnectResult answers a connect command.
type ConnectResult struct {
	Edge    diagram.Edge `json:"edge"`
	Created bool         `json:"created"`
}

// Dispatcher applies command envelopes to a session.
type Dispatcher struct {
	validate *validator.Validate
	newID    func() string
}

func NewDispatcher(v *validator.Validate, newID func() string) *Dispatcher {
	return &Dispatcher{validate: v, newID: newID}
}

// Apply validates cmd and runs it against s. The returned value is the
// created entity for node.add, column.add and connect, nil otherwise.
func (d *Dispatcher) Apply(s *editor.Session, cmd types.Command) (any, error) {
	if err := validate(d.validate, cmd); err != nil {
		return nil, err
	}

	switch cmd.Type {
	case types.CmdNodesChanges:
		var p types.NodeChangesPayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.ApplyNodeChanges(p.Changes)

	case types.CmdEdgesChanges:
		var p types.EdgeChangesPayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.ApplyEdgeChanges(p.Changes)

	case types.CmdConnect:
		var p diagram.Connection
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		e, ok := s.Connect(p)
		return ConnectResult{Edge: e, Created: ok}, nil

	case types.CmdNodeAdd:
		var p types.NodeAddPayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		var n diagram.Node
		if p.Node != nil {
			n = *p.Node
		} else {
			var at diagram.Position
			if p.Position != nil {
				at = *p.Position
			}
			n = diagram.NewTableNode(d.newID(), d.newID(), at)
		}
		s.AddNode(n)
		return n, nil

	case types.CmdNodeUpdate:
		var p types.NodeUpdatePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.UpdateNode(p.ID, p.Update)

	case types.CmdNodeDataUpdate:
		var p types.NodeDataUpdatePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.UpdateNodeData(p.ID, p.Update)

	case types.CmdNodeDelete:
		var p types.NodeDeletePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.DeleteNode(p.ID)

	case types.CmdColumnAdd:
		var p types.ColumnAddPayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		col := diagram.NewColumn(d.newID())
		if p.Column != nil {
			col = *p.Column
		}
		s.AddColumn(p.NodeID, col)
		return col, nil

	case types.CmdColumnUpdate:
		var p types.ColumnUpdatePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.UpdateColumn(p.NodeID, p.ColumnID, p.Update)

	case types.CmdColumnDelete:
		var p types.ColumnDeletePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.DeleteColumn(p.NodeID, p.ColumnID)

	case types.CmdProjectRename:
		var p types.ProjectRenamePayload
		if err := d.payload(cmd, &p); err != nil {
			return nil, err
		}
		s.SetProjectName(p.Name)

	default:
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown command %q", cmd.Type))
	}
	return nil, nil
}

func (d *Dispatcher) payload(cmd types.Command, dst any) error {
	if len(cmd.Payload) == 0 {
		return appErr.New(appErr.CodeInvalid, cmd.Type+": missing payload")
	}
	if err := json.Unmarshal(cmd.Payload, dst); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, cmd.Type+": invalid payload")
	}
	return validate(d.validate, dst)
}
