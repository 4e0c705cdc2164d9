package routing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-studio/engine/internal/diagram"
)

func table(id string, x, width float64) diagram.Node {
	return diagram.Node{
		ID:       id,
		Position: diagram.Position{X: x},
		Measured: &diagram.Dimensions{Width: width, Height: 100},
	}
}

func TestResolveSidesScenario(t *testing.T) {
	a := table("A", 0, 200)
	b := table("B", 500, 200)

	h := ResolveSides("A", "B", "c1", "c2", []diagram.Node{a, b})
	assert.Equal(t, Handles{SourceHandle: "sr-c1", TargetHandle: "tl-c2"}, h)

	a.Position.X = 700
	h = ResolveSides("A", "B", "c1", "c2", []diagram.Node{a, b})
	assert.Equal(t, Handles{SourceHandle: "sl-c1", TargetHandle: "tr-c2"}, h)
}

func TestResolveSidesTieGoesSourceLeft(t *testing.T) {
	nodes := []diagram.Node{table("A", 100, 200), table("B", 150, 100)}

	h := ResolveSides("A", "B", "c1", "c2", nodes)
	assert.Equal(t, "sl-c1", h.SourceHandle)
	assert.Equal(t, "tr-c2", h.TargetHandle)
}

func TestResolveSidesAntiSymmetric(t *testing.T) {
	positions := [][2]float64{{0, 500}, {500, 0}, {-300, 20}, {42.5, 42}}
	for _, p := range positions {
		nodes := []diagram.Node{table("A", p[0], 200), table("B", p[1], 200)}

		ab := ResolveSides("A", "B", "a", "b", nodes)
		ba := ResolveSides("B", "A", "b", "a", nodes)

		abSrc, _ := DecodeTag(ab.SourceHandle)
		baDst, _ := DecodeTag(ba.TargetHandle)
		abDst, _ := DecodeTag(ab.TargetHandle)
		baSrc, _ := DecodeTag(ba.SourceHandle)

		// A keeps the same physical side in both directions, as does B.
		assert.Equal(t, side(abSrc), side(baDst), "A side for %v", p)
		assert.Equal(t, side(abDst), side(baSrc), "B side for %v", p)
		assert.NotEqual(t, side(abSrc), side(abDst), "sides differ for %v", p)
	}
}

func side(t Tag) byte { return string(t)[1] }

func TestResolveSidesUnknownNodeFallsBack(t *testing.T) {
	nodes := []diagram.Node{table("A", 900, 200)}

	h := ResolveSides("A", "ghost", "c1", "c2", nodes)
	assert.Equal(t, Handles{SourceHandle: "sr-c1", TargetHandle: "tl-c2"}, h)

	h = ResolveSides("ghost", "A", "c1", "c2", nil)
	assert.Equal(t, Handles{SourceHandle: "sr-c1", TargetHandle: "tl-c2"}, h)
}

func TestDecodeColumnID(t *testing.T) {
	cases := map[string]string{
		"sl-abc": "abc",
		"tr-6f1c2b1e-0000-4000-8000-000000000001": "6f1c2b1e-0000-4000-8000-000000000001",
		"abc":                                  "abc",
		"xx-abc":                               "xx-abc",
		"6f1c2b1e-0000-4000-8000-000000000001": "6f1c2b1e-0000-4000-8000-000000000001",
		"":                                     "",
		"sr-":                                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, DecodeColumnID(in), in)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, tag := range []Tag{SourceLeft, SourceRight, TargetLeft, TargetRight} {
		h := Encode(tag, "col-with-dashes")
		assert.Equal(t, "col-with-dashes", DecodeColumnID(h))
		got, ok := DecodeTag(h)
		require.True(t, ok)
		assert.Equal(t, tag, got)
	}
	_, ok := DecodeTag("legacy")
	assert.False(t, ok)
}

func TestRepairIsIdempotent(t *testing.T) {
	nodes := []diagram.Node{table("A", 700, 200), table("B", 0, 200), table("C", 1400, 200)}
	edges := []diagram.Edge{
		{ID: "e1", Source: "A", Target: "B", SourceHandle: "sr-a1", TargetHandle: "tl-b1"},
		{ID: "e2", Source: "A", Target: "C", SourceHandle: "a2", TargetHandle: "c1"},
		{ID: "e3", Source: "B", Target: "ghost", SourceHandle: "sl-b2", TargetHandle: "tr-g1"},
	}

	once := Repair(edges, nodes)
	twice := Repair(once, nodes)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("repair not idempotent (-once +twice):\n%s", diff)
	}
	assert.Equal(t, "sl-a1", once[0].SourceHandle)
	assert.Equal(t, "tr-b1", once[0].TargetHandle)
	assert.Equal(t, "sr-a2", once[1].SourceHandle)
	assert.Equal(t, "tl-c1", once[1].TargetHandle)
	assert.Equal(t, "sr-b2", once[2].SourceHandle, "unknown target falls back")
	// input untouched
	assert.Equal(t, "sr-a1", edges[0].SourceHandle)
}

func TestRouteLeavesMalformedEdgeAlone(t *testing.T) {
	nodes := []diagram.Node{table("A", 700, 200), table("B", 0, 200)}
	e := diagram.Edge{ID: "e1", Source: "A", Target: "B", SourceHandle: "", TargetHandle: "tl-b1"}

	assert.Equal(t, e, Route(e, diagram.IndexNodes(nodes)))
}

func TestRerouteTouchingOnlyMovedEdges(t *testing.T) {
	nodes := []diagram.Node{table("A", 700, 200), table("B", 0, 200), table("C", 2000, 200), table("D", 1000, 200)}
	edges := []diagram.Edge{
		{ID: "ab", Source: "A", Target: "B", SourceHandle: "sr-a", TargetHandle: "tl-b"},
		// stale on purpose; must stay stale because neither C nor D moved
		{ID: "cd", Source: "C", Target: "D", SourceHandle: "sr-c", TargetHandle: "tl-d"},
	}

	n := RerouteTouching(edges, nodes, map[string]struct{}{"B": {}})
	assert.Equal(t, 1, n)
	assert.Equal(t, "sl-a", edges[0].SourceHandle)
	assert.Equal(t, "sr-c", edges[1].SourceHandle)

	assert.Zero(t, RerouteTouching(edges, nodes, nil))
}
