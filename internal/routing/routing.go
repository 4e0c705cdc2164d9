// Package routing picks the left/right attachment sides of relationship edges
// from the relative horizontal position of the two tables they connect.
//
// A handle string is "<tag>-<columnID>" where tag is one of sl, sr, tl, tr
// (source-left, source-right, target-left, target-right). Everything here is
// pure: callers own the node and edge slices.
package routing

import (
	"strings"

	"github.com/erd-studio/engine/internal/diagram"
)

// Tag is the side prefix of a handle.
type Tag string

const (
	SourceLeft  Tag = "sl"
	SourceRight Tag = "sr"
	TargetLeft  Tag = "tl"
	TargetRight Tag = "tr"
)

const sep = "-"

func (t Tag) valid() bool {
	switch t {
	case SourceLeft, SourceRight, TargetLeft, TargetRight:
		return true
	}
	return false
}

// Handles is a resolved pair of edge endpoints.
type Handles struct {
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Encode joins a side tag and a column id into a handle.
func Encode(tag Tag, columnID string) string {
	return string(tag) + sep + columnID
}

// DecodeColumnID strips a recognized side tag from handle. Handles without a
// recognized tag (written before routing existed) are returned unchanged.
func DecodeColumnID(handle string) string {
	tag, rest, ok := strings.Cut(handle, sep)
	if ok && Tag(tag).valid() {
		return rest
	}
	return handle
}

// DecodeTag returns the side tag of handle, if it has a recognized one.
func DecodeTag(handle string) (Tag, bool) {
	tag, _, ok := strings.Cut(handle, sep)
	if ok && Tag(tag).valid() {
		return Tag(tag), true
	}
	return "", false
}

// ResolveSides picks the attachment sides for an edge from sourceNodeID's
// column to targetNodeID's column. When the source sits left of the target
// the edge leaves the source on its right and enters the target on its left;
// otherwise (ties included) the sides are mirrored. Unknown nodes fall back
// to source-right/target-left.
func ResolveSides(sourceNodeID, targetNodeID, sourceColumnID, targetColumnID string, nodes []diagram.Node) Handles {
	return resolve(sourceNodeID, targetNodeID, sourceColumnID, targetColumnID, func(id string) (diagram.Node, bool) {
		for _, n := range nodes {
			if n.ID == id {
				return n, true
			}
		}
		return diagram.Node{}, false
	})
}

func resolve(sourceNodeID, targetNodeID, sourceColumnID, targetColumnID string, lookup func(string) (diagram.Node, bool)) Handles {
	src, okSrc := lookup(sourceNodeID)
	dst, okDst := lookup(targetNodeID)
	if !okSrc || !okDst || src.CenterX() < dst.CenterX() {
		return Handles{
			SourceHandle: Encode(SourceRight, sourceColumnID),
			TargetHandle: Encode(TargetLeft, targetColumnID),
		}
	}
	return Handles{
		SourceHandle: Encode(SourceLeft, sourceColumnID),
		TargetHandle: Encode(TargetRight, targetColumnID),
	}
}

// Route returns e with its handles re-resolved against the indexed nodes.
// Edges whose handles do not name a column are returned untouched.
func Route(e diagram.Edge, index map[string]diagram.Node) diagram.Edge {
	srcCol := DecodeColumnID(e.SourceHandle)
	dstCol := DecodeColumnID(e.TargetHandle)
	if srcCol == "" || dstCol == "" {
		return e
	}
	h := resolve(e.Source, e.Target, srcCol, dstCol, func(id string) (diagram.Node, bool) {
		n, ok := index[id]
		return n, ok
	})
	e.SourceHandle = h.SourceHandle
	e.TargetHandle = h.TargetHandle
	return e
}

// Repair re-routes every edge against nodes. It is idempotent: repairing an
// already repaired set changes nothing.
func Repair(edges []diagram.Edge, nodes []diagram.Node) []diagram.Edge {
	index := diagram.IndexNodes(nodes)
	out := make([]diagram.Edge, len(edges))
	for i, e := range edges {
		out[i] = Route(e, index)
	}
	return out
}

// RerouteTouching re-routes, in place, only the edges with an endpoint in
// moved, and reports how many handles changed.
func RerouteTouching(edges []diagram.Edge, nodes []diagram.Node, moved map[string]struct{}) int {
	if len(moved) == 0 {
		return 0
	}
	var index map[string]diagram.Node
	changed := 0
	for i, e := range edges {
		_, s := moved[e.Source]
		_, t := moved[e.Target]
		if !s && !t {
			continue
		}
		if index == nil {
			index = diagram.IndexNodes(nodes)
		}
		routed := Route(e, index)
		if routed != e {
			edges[i] = routed
			changed++
		}
	}
	return changed
}
