package editor

import (
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/routing"
)

// SetProjectName renames the open project. No-op without a loaded project.
func (s *Session) SetProjectName(name string) {
	s.mutate(func() bool {
		if s.project == nil {
			return false
		}
		s.project.Name = name
		return true
	})
}

// ApplyNodeChanges applies a change-set from the canvas. Edges touching nodes
// whose position or measured size changed are re-routed; removed nodes take
// their edges with them in the same transition.
func (s *Session) ApplyNodeChanges(changes []diagram.NodeChange) {
	s.mutate(func() bool {
		moved := map[string]struct{}{}
		removed := map[string]struct{}{}
		changed := false

		for _, c := range changes {
			if c.Type == diagram.NodeChangeAdd {
				if c.Item != nil && s.insertNodeLocked(*c.Item) {
					changed = true
				}
				continue
			}

			i := s.nodeIndexLocked(c.ID)
			if i < 0 {
				continue
			}
			n := &s.nodes[i]
			switch c.Type {
			case diagram.NodeChangeRemove:
				s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
				removed[c.ID] = struct{}{}
			case diagram.NodeChangeReplace:
				if c.Item == nil {
					continue
				}
				item := c.Item.Clone()
				item.ID = c.ID
				*n = item
				moved[c.ID] = struct{}{}
			case diagram.NodeChangePosition:
				if c.Position != nil {
					n.Position = *c.Position
				}
				if c.Dragging != nil {
					n.Dragging = *c.Dragging
				}
				if c.InDrag() || c.Position != nil {
					moved[c.ID] = struct{}{}
				}
			case diagram.NodeChangeDimensions:
				if c.Dimensions == nil {
					continue
				}
				d := *c.Dimensions
				n.Measured = &d
				if c.SetAttributes {
					w, h := d.Width, d.Height
					n.Style = &diagram.Style{Width: &w, Height: &h}
				}
				moved[c.ID] = struct{}{}
			case diagram.NodeChangeSelect:
				n.Selected = c.Selected
			default:
				continue
			}
			changed = true
		}

		if len(removed) > 0 {
			s.dropEdgesLocked(func(e diagram.Edge) bool {
				_, src := removed[e.Source]
				_, dst := removed[e.Target]
				return src || dst
			})
		}
		if n := routing.RerouteTouching(s.edges, s.nodes, moved); n > 0 {
			s.log.Debug("edges re-routed", zap.Int("count", n))
		}
		return changed
	})
}

// AddNode appends a fully formed node. Nodes without an id or with an id
// already in use are ignored.
func (s *Session) AddNode(n diagram.Node) {
	s.mutate(func() bool { return s.insertNodeLocked(n) })
}

// UpdateNode shallow-merges root fields into node id. A position or size
// change re-routes the node's edges.
func (s *Session) UpdateNode(id string, u diagram.NodeUpdate) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(id)
		if i < 0 {
			return false
		}
		n := &s.nodes[i]
		changed := false
		if u.Style != nil {
			// an empty style means autofit
			n.Style = nil
			if u.Style.Width != nil || u.Style.Height != nil {
				n.Style = diagram.Node{Style: u.Style}.Clone().Style
			}
			changed = true
		}
		if u.Selected != nil {
			n.Selected = *u.Selected
			changed = true
		}
		relayout := false
		if u.Position != nil {
			n.Position = *u.Position
			relayout = true
		}
		if u.Measured != nil {
			m := *u.Measured
			n.Measured = &m
			relayout = true
		}
		if relayout {
			routing.RerouteTouching(s.edges, s.nodes, map[string]struct{}{id: {}})
		}
		return changed || relayout
	})
}

// UpdateNodeData shallow-merges into the data of node id. Colors outside the
// palette are ignored.
func (s *Session) UpdateNodeData(id string, u diagram.NodeDataUpdate) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(id)
		if i < 0 {
			return false
		}
		d := &s.nodes[i].Data
		changed := false
		if u.Label != nil {
			d.Label = *u.Label
			changed = true
		}
		if u.Color != nil {
			if u.Color.Valid() {
				d.Color = *u.Color
				changed = true
			} else {
				s.log.Debug("ignoring color outside palette", zap.String("node_id", id), zap.String("color", string(*u.Color)))
			}
		}
		if u.Columns != nil {
			d.Columns = diagram.Node{Data: diagram.TableData{Columns: u.Columns}}.Clone().Data.Columns
			changed = true
		}
		return changed
	})
}

// DeleteNode removes node id and every edge touching it in one transition.
func (s *Session) DeleteNode(id string) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(id)
		if i < 0 {
			return false
		}
		s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
		s.dropEdgesLocked(func(e diagram.Edge) bool { return e.Touches(id) })
		return true
	})
}

func (s *Session) insertNodeLocked(n diagram.Node) bool {
	if n.ID == "" || s.nodeIndexLocked(n.ID) >= 0 {
		return false
	}
	n = n.Clone()
	if n.Type == "" {
		n.Type = diagram.NodeTypeTable
	}
	if n.Data.Columns == nil {
		n.Data.Columns = []diagram.Column{}
	}
	s.nodes = append(s.nodes, n)
	return true
}

func (s *Session) nodeIndexLocked(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) dropEdgesLocked(drop func(diagram.Edge) bool) {
	kept := s.edges[:0]
	for _, e := range s.edges {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	s.edges = kept
}
