package editor

import (
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/routing"
)

const edgeIDPrefix = "xy-edge__"

// EdgeID derives the id of a routed edge from its endpoints.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return edgeIDPrefix + source + sourceHandle + "-" + target + targetHandle
}

// ApplyEdgeChanges applies an edge change-set. Added edges are routed before
// insertion and refused when they reference a missing node or column.
func (s *Session) ApplyEdgeChanges(changes []diagram.EdgeChange) {
	s.mutate(func() bool {
		changed := false
		for _, c := range changes {
			switch c.Type {
			case diagram.EdgeChangeAdd:
				if c.Item == nil {
					continue
				}
				if _, ok := s.insertEdgeLocked(*c.Item); ok {
					changed = true
				}
			case diagram.EdgeChangeRemove:
				before := len(s.edges)
				s.dropEdgesLocked(func(e diagram.Edge) bool { return e.ID == c.ID })
				if len(s.edges) != before {
					changed = true
				}
			case diagram.EdgeChangeReplace:
				i := s.edgeIndexLocked(c.ID)
				if c.Item == nil || i < 0 {
					continue
				}
				e, ok := s.routeLocked(*c.Item)
				if !ok {
					continue
				}
				e.ID = c.ID
				s.edges[i] = e
				changed = true
			case diagram.EdgeChangeSelect:
				if i := s.edgeIndexLocked(c.ID); i >= 0 {
					s.edges[i].Selected = c.Selected
					changed = true
				}
			}
		}
		return changed
	})
}

// Connect creates an edge for a connection drawn between two column handles.
// The stored handles are re-resolved from the current layout regardless of
// the side the user dragged from. It reports false when the connection names
// a missing node or column, or duplicates an existing edge.
func (s *Session) Connect(c diagram.Connection) (diagram.Edge, bool) {
	var out diagram.Edge
	ok := s.mutate(func() bool {
		var inserted bool
		out, inserted = s.insertEdgeLocked(diagram.Edge{
			Source:       c.Source,
			Target:       c.Target,
			SourceHandle: c.SourceHandle,
			TargetHandle: c.TargetHandle,
		})
		return inserted
	})
	return out, ok
}

// routeLocked checks e against the current nodes and returns it with
// layout-resolved handles.
func (s *Session) routeLocked(e diagram.Edge) (diagram.Edge, bool) {
	srcCol := routing.DecodeColumnID(e.SourceHandle)
	dstCol := routing.DecodeColumnID(e.TargetHandle)
	if srcCol == "" || dstCol == "" {
		return e, false
	}
	si, ti := s.nodeIndexLocked(e.Source), s.nodeIndexLocked(e.Target)
	if si < 0 || ti < 0 {
		return e, false
	}
	if _, ok := s.nodes[si].Column(srcCol); !ok {
		return e, false
	}
	if _, ok := s.nodes[ti].Column(dstCol); !ok {
		return e, false
	}
	h := routing.ResolveSides(e.Source, e.Target, srcCol, dstCol, s.nodes)
	e.SourceHandle = h.SourceHandle
	e.TargetHandle = h.TargetHandle
	return e, true
}

func (s *Session) insertEdgeLocked(e diagram.Edge) (diagram.Edge, bool) {
	routed, ok := s.routeLocked(e)
	if !ok {
		s.log.Debug("refusing edge with missing endpoint",
			zap.String("source", e.Source),
			zap.String("target", e.Target),
			zap.String("source_handle", e.SourceHandle),
			zap.String("target_handle", e.TargetHandle),
		)
		return e, false
	}
	for _, existing := range s.edges {
		if sameEndpoints(existing, routed) {
			return existing, false
		}
	}
	if routed.ID == "" || s.edgeIndexLocked(routed.ID) >= 0 {
		routed.ID = EdgeID(routed.Source, routed.SourceHandle, routed.Target, routed.TargetHandle)
	}
	s.edges = append(s.edges, routed)
	return routed, true
}

func (s *Session) edgeIndexLocked(id string) int {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return i
		}
	}
	return -1
}

func sameEndpoints(a, b diagram.Edge) bool {
	return a.Source == b.Source &&
		a.Target == b.Target &&
		routing.DecodeColumnID(a.SourceHandle) == routing.DecodeColumnID(b.SourceHandle) &&
		routing.DecodeColumnID(a.TargetHandle) == routing.DecodeColumnID(b.TargetHandle)
}
