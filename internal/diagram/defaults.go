package diagram

// Defaults applied to freshly created entities.
const (
	DefaultProjectName = "Untitled Project"
	DefaultTableLabel  = "new_table"
	DefaultColumnName  = "new_column"
)

// NewColumn returns a blank varchar column with the given id.
func NewColumn(id string) Column {
	return Column{ID: id, Name: DefaultColumnName, Type: ColumnVarchar}
}

// NewTableNode returns a table with a single uuid primary key column.
func NewTableNode(id, pkColumnID string, at Position) Node {
	return Node{
		ID:       id,
		Type:     NodeTypeTable,
		Position: at,
		Data: TableData{
			Label: DefaultTableLabel,
			Columns: []Column{
				{ID: pkColumnID, Name: "id", Type: ColumnUUID, IsPk: true},
			},
		},
	}
}
