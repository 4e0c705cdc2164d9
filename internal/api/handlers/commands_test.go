package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-studio/engine/internal/api/types"
	"github.com/erd-studio/engine/internal/api/validators"
	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/editor"
	"github.com/erd-studio/engine/internal/repository"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func seqIDs() func() string {
	n := 0
	return func() string { n++; return fmt.Sprintf("gen-%d", n) }
}

func loadedSession(t *testing.T) *editor.Session {
	t.Helper()
	store := repository.NewMemoryGateway()
	require.NoError(t, store.Put(context.Background(), &diagram.Project{
		ID:   "p1",
		Name: "shop",
		Nodes: []diagram.Node{
			{ID: "A", Type: diagram.NodeTypeTable, Measured: &diagram.Dimensions{Width: 200, Height: 80},
				Data: diagram.TableData{Label: "orders", Columns: []diagram.Column{{ID: "a1", Name: "id", Type: diagram.ColumnUUID, IsPk: true}}}},
			{ID: "B", Type: diagram.NodeTypeTable, Position: diagram.Position{X: 500},
				Data: diagram.TableData{Label: "items", Columns: []diagram.Column{{ID: "b1", Name: "order_id", Type: diagram.ColumnUUID, IsFk: true}}}},
		},
		Edges: []diagram.Edge{},
	}))
	s := editor.New(store, editor.WithDebounce(time.Hour))
	t.Cleanup(s.Discard)
	s.Load(context.Background(), "p1")
	require.NotNil(t, s.Project())
	return s
}

func command(t *testing.T, typ string, payload any) types.Command {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return types.Command{Type: typ, Payload: raw}
}

func TestDispatchConnectRoutesHandles(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())

	res, err := d.Apply(s, command(t, types.CmdConnect, diagram.Connection{
		Source: "A", Target: "B", SourceHandle: "a1", TargetHandle: "b1",
	}))
	require.NoError(t, err)
	cr, ok := res.(ConnectResult)
	require.True(t, ok)
	assert.True(t, cr.Created)
	assert.Equal(t, "sr-a1", cr.Edge.SourceHandle)
	assert.Equal(t, "tl-b1", cr.Edge.TargetHandle)
	assert.Equal(t, editor.EdgeID("A", "sr-a1", "B", "tl-b1"), cr.Edge.ID)
	require.Len(t, s.Edges(), 1)

	res, err = d.Apply(s, command(t, types.CmdConnect, diagram.Connection{
		Source: "A", Target: "B", SourceHandle: "a1", TargetHandle: "b1",
	}))
	require.NoError(t, err)
	assert.False(t, res.(ConnectResult).Created)
	assert.Len(t, s.Edges(), 1)
}

func TestDispatchNodeAddDefaults(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())

	res, err := d.Apply(s, command(t, types.CmdNodeAdd, types.NodeAddPayload{Position: &diagram.Position{X: 40, Y: 60}}))
	require.NoError(t, err)
	n := res.(diagram.Node)
	assert.Equal(t, "gen-1", n.ID)
	assert.Equal(t, diagram.DefaultTableLabel, n.Data.Label)
	require.Len(t, n.Data.Columns, 1)
	assert.True(t, n.Data.Columns[0].IsPk)

	nodes := s.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, diagram.Position{X: 40, Y: 60}, nodes[2].Position)
}

func TestDispatchColumnLifecycle(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())

	res, err := d.Apply(s, command(t, types.CmdColumnAdd, types.ColumnAddPayload{NodeID: "A"}))
	require.NoError(t, err)
	col := res.(diagram.Column)
	assert.Equal(t, diagram.DefaultColumnName, col.Name)
	assert.Equal(t, diagram.ColumnVarchar, col.Type)

	name := "total"
	typ := diagram.ColumnText
	_, err = d.Apply(s, command(t, types.CmdColumnUpdate, types.ColumnUpdatePayload{
		NodeID: "A", ColumnID: col.ID, Update: diagram.ColumnUpdate{Name: &name, Type: &typ},
	}))
	require.NoError(t, err)
	got, ok := s.Nodes()[0].Column(col.ID)
	require.True(t, ok)
	assert.Equal(t, "total", got.Name)
	assert.Equal(t, diagram.ColumnText, got.Type)

	_, err = d.Apply(s, command(t, types.CmdColumnDelete, types.ColumnDeletePayload{NodeID: "A", ColumnID: col.ID}))
	require.NoError(t, err)
	_, ok = s.Nodes()[0].Column(col.ID)
	assert.False(t, ok)
}

func TestDispatchRejectsInvalidInput(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())
	before := s.Snapshot()

	cases := map[string]types.Command{
		"unknown type":    {Type: "table.drop", Payload: json.RawMessage(`{}`)},
		"missing payload": {Type: types.CmdNodeDelete},
		"bad json":        {Type: types.CmdNodeDelete, Payload: json.RawMessage(`[1,2]`)},
		"missing id":      command(t, types.CmdNodeDelete, types.NodeDeletePayload{}),
		"bad column type": {Type: types.CmdColumnUpdate, Payload: json.RawMessage(`{"nodeId":"A","columnId":"a1","update":{"type":"blob"}}`)},
		"bad color":       {Type: types.CmdNodeDataUpdate, Payload: json.RawMessage(`{"id":"A","update":{"color":"bg-black"}}`)},
		"empty rename":    command(t, types.CmdProjectRename, types.ProjectRenamePayload{}),
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := d.Apply(s, cmd)
			require.Error(t, err)
			assert.True(t, appErr.IsCode(err, appErr.CodeInvalid), err.Error())
		})
	}
	assert.Equal(t, before, s.Snapshot())
}

func TestDispatchNodeDeleteCascades(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())
	_, err := d.Apply(s, command(t, types.CmdConnect, diagram.Connection{Source: "A", Target: "B", SourceHandle: "a1", TargetHandle: "b1"}))
	require.NoError(t, err)

	res, err := d.Apply(s, command(t, types.CmdNodeDelete, types.NodeDeletePayload{ID: "B"}))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
}

func TestDispatchRename(t *testing.T) {
	s := loadedSession(t)
	d := NewDispatcher(validators.New(), seqIDs())

	_, err := d.Apply(s, command(t, types.CmdProjectRename, types.ProjectRenamePayload{Name: "warehouse"}))
	require.NoError(t, err)
	assert.Equal(t, "warehouse", s.Snapshot().Project.Name)
}
