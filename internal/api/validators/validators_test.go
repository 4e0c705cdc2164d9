package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-studio/engine/internal/diagram"
)

func TestColumnTypeAndColorTags(t *testing.T) {
	v := New()

	ok := diagram.Node{
		ID: "n",
		Data: diagram.TableData{
			Color:   diagram.ColorAmber,
			Columns: []diagram.Column{{ID: "c", Type: diagram.ColumnJSON}},
		},
	}
	require.NoError(t, v.Struct(ok))

	bad := ok.Clone()
	bad.Data.Color = "bg-black"
	bad.Data.Columns[0].Type = "money"
	err := v.Struct(bad)
	require.Error(t, err)
	msg := Message(err)
	assert.Contains(t, msg, "Node.data.color: failed nodecolor")
	assert.Contains(t, msg, "Node.data.columns[0].type: failed columntype")
}

func TestEmptyColorIsAllowed(t *testing.T) {
	n := diagram.Node{ID: "n", Data: diagram.TableData{Columns: []diagram.Column{}}}
	assert.NoError(t, New().Struct(n))
}

func TestPartialUpdatesValidateOnlyPresentFields(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(diagram.ColumnUpdate{}))

	money := diagram.ColumnType("money")
	assert.Error(t, v.Struct(diagram.ColumnUpdate{Type: &money}))
}
