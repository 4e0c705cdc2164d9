package diagram

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Data.Columns != nil {
		out.Data.Columns = make([]Column, len(n.Data.Columns))
		copy(out.Data.Columns, n.Data.Columns)
	}
	if n.Style != nil {
		s := Style{}
		if n.Style.Width != nil {
			w := *n.Style.Width
			s.Width = &w
		}
		if n.Style.Height != nil {
			h := *n.Style.Height
			s.Height = &h
		}
		out.Style = &s
	}
	if n.Measured != nil {
		m := *n.Measured
		out.Measured = &m
	}
	return out
}

// CloneNodes deep-copies a node slice. The result is never nil.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge slice. The result is never nil.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Nodes = CloneNodes(p.Nodes)
	out.Edges = CloneEdges(p.Edges)
	return &out
}
