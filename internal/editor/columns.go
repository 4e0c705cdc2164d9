package editor

import (
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
)

// AddColumn appends col to node nodeID. Columns without an id, whose id is
// already used on the node, or with an unknown type are ignored. An empty
// type defaults to varchar.
func (s *Session) AddColumn(nodeID string, col diagram.Column) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(nodeID)
		if i < 0 || col.ID == "" {
			return false
		}
		if _, dup := s.nodes[i].Column(col.ID); dup {
			return false
		}
		if col.Type == "" {
			col.Type = diagram.ColumnVarchar
		}
		if !col.Type.Valid() {
			s.log.Debug("ignoring column with unknown type",
				zap.String("node_id", nodeID),
				zap.String("column_id", col.ID),
				zap.String("type", string(col.Type)),
			)
			return false
		}
		s.setColumnsLocked(i, append(s.columnsLocked(i), col))
		return true
	})
}

// UpdateColumn merges u into column columnID of node nodeID.
func (s *Session) UpdateColumn(nodeID, columnID string, u diagram.ColumnUpdate) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(nodeID)
		if i < 0 {
			return false
		}
		cols := s.columnsLocked(i)
		found := false
		for j := range cols {
			if cols[j].ID != columnID {
				continue
			}
			c := &cols[j]
			if u.Name != nil {
				c.Name = *u.Name
			}
			if u.Type != nil && u.Type.Valid() {
				c.Type = *u.Type
			}
			if u.IsPk != nil {
				c.IsPk = *u.IsPk
			}
			if u.IsFk != nil {
				c.IsFk = *u.IsFk
			}
			found = true
		}
		if !found {
			return false
		}
		s.setColumnsLocked(i, cols)
		return true
	})
}

// DeleteColumn removes column columnID from node nodeID. Edges referencing the
// column are kept and keep their handles.
func (s *Session) DeleteColumn(nodeID, columnID string) {
	s.mutate(func() bool {
		i := s.nodeIndexLocked(nodeID)
		if i < 0 {
			return false
		}
		old := s.nodes[i].Data.Columns
		cols := make([]diagram.Column, 0, len(old))
		for _, c := range old {
			if c.ID != columnID {
				cols = append(cols, c)
			}
		}
		if len(cols) == len(old) {
			return false
		}
		s.setColumnsLocked(i, cols)
		return true
	})
}

// columnsLocked returns a private copy of node i's columns.
func (s *Session) columnsLocked(i int) []diagram.Column {
	old := s.nodes[i].Data.Columns
	cols := make([]diagram.Column, len(old), len(old)+1)
	copy(cols, old)
	return cols
}

func (s *Session) setColumnsLocked(i int, cols []diagram.Column) {
	s.nodes[i].Data.Columns = cols
}
