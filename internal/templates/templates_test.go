package templates

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/routing"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

func TestBlankIsEmpty(t *testing.T) {
	for _, name := range []Name{Blank, ""} {
		nodes, edges, err := New().Generate(name)
		require.NoError(t, err)
		assert.Empty(t, nodes)
		assert.Empty(t, edges)
		assert.NotNil(t, nodes)
		assert.NotNil(t, edges)
	}
}

func TestSaaSShape(t *testing.T) {
	nodes, edges, err := New().Generate(SaaS)
	require.NoError(t, err)
	require.Len(t, nodes, 7)
	require.Len(t, edges, 6)

	var labels []string
	for _, n := range nodes {
		labels = append(labels, n.Data.Label)
	}
	assert.Equal(t, []string{"users", "roles", "workspaces", "companies", "departments", "subscriptions", "payments"}, labels)
}

func TestSaaSIsReferentiallyConsistent(t *testing.T) {
	nodes, edges, err := New().Generate(SaaS)
	require.NoError(t, err)

	index := diagram.IndexNodes(nodes)
	seen := map[string]bool{}
	for _, n := range nodes {
		assert.False(t, seen[n.ID], "duplicate node id")
		seen[n.ID] = true
	}
	for _, e := range edges {
		src, ok := index[e.Source]
		require.True(t, ok, "edge %s source", e.ID)
		dst, ok := index[e.Target]
		require.True(t, ok, "edge %s target", e.ID)

		_, ok = src.Column(routing.DecodeColumnID(e.SourceHandle))
		assert.True(t, ok, "source column of %s", e.ID)
		c, ok := dst.Column(routing.DecodeColumnID(e.TargetHandle))
		assert.True(t, ok, "target column of %s", e.ID)
		assert.True(t, c.IsFk, "edge %s targets a foreign key", e.ID)
	}
}

func TestSaaSHandlesArePreRouted(t *testing.T) {
	nodes, edges, err := New().Generate(SaaS)
	require.NoError(t, err)

	if diff := cmp.Diff(edges, routing.Repair(edges, nodes)); diff != "" {
		t.Fatalf("template edges are not routed (-got +repaired):\n%s", diff)
	}
	// roles (x=500) feeds users (x=100): leaves roles on its left side
	assert.Equal(t, "sl", string(edges[0].SourceHandle[:2]))
}

func TestDeterministicIDs(t *testing.T) {
	n := 0
	g := &Generator{NewID: func() string { n++; return fmt.Sprintf("id-%03d", n) }}

	nodes, edges, err := g.Generate(SaaS)
	require.NoError(t, err)
	assert.Equal(t, "id-001", nodes[0].ID)
	assert.Equal(t, "id-002", nodes[0].Data.Columns[0].ID)
	assert.Equal(t, "roles", nodes[1].Data.Label)
	assert.Equal(t, nodes[1].ID, edges[0].Source)
	assert.Equal(t, nodes[0].ID, edges[0].Target)
}

func TestUnknownTemplate(t *testing.T) {
	_, _, err := New().Generate("crm")
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
