package scenefile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/arbor"
)

func loadStack(t *testing.T) (*File, *Tree) {
	t.Helper()
	f, err := Load("testdata/stack.toml")
	require.NoError(t, err)
	tree, err := f.Build()
	require.NoError(t, err)
	return f, tree
}

func TestLoadBuildsTree(t *testing.T) {
	f, tree := loadStack(t)

	assert.Len(t, f.Nodes, 5)
	assert.Len(t, f.Steps, 5)
	assert.Len(t, tree.ByName, 8)
	assert.Equal(t, 5, tree.Root.Children().Len())

	panel, ok := tree.ByName["panel"].(*arbor.Group)
	require.True(t, ok)
	assert.Equal(t, 40, panel.Depth())
	assert.True(t, panel.Interactive)
	assert.Equal(t, 1, panel.Children().Len())

	list, ok := tree.ByName["list"].(*arbor.Viewport)
	require.True(t, ok)
	assert.Equal(t, arbor.Rect{Width: 50, Height: 50}, list.Clip)
	assert.Equal(t, 41, list.Depth(), "added above the explicit depth")

	assert.Same(t, tree.ByName["list"], tree.Root.Children().Front())
}

func TestReplayStack(t *testing.T) {
	f, tree := loadStack(t)
	d := arbor.NewDispatcher(tree.Root.Children())

	var hits []arbor.Node
	for _, st := range f.Steps {
		n, err := tree.Apply(d, st)
		require.NoError(t, err)
		hits = append(hits, n)
	}

	assert.Same(t, tree.ByName["L3"], hits[0])
	assert.Nil(t, hits[1])
	assert.Same(t, tree.ByName["L2"], hits[2])
	assert.Same(t, tree.ByName["button"], hits[3])
	assert.Same(t, tree.ByName["panel"], hits[4])
	assert.Same(t, tree.ByName["button"], d.HoveredNode())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(`
[[node]]
name = "a"
colour = "red"
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestParseRejectsBadSteps(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown type", "[[step]]\ntype = \"wiggle\"", "unknown step type"},
		{"hover events are derived", "[[step]]\ntype = \"pointerenter\"", "cannot be scripted"},
		{"reorder without node", "[[step]]\ntype = \"bringToFront\"", "needs a node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing name", "[[node]]\nrect = [0, 0, 1, 1]"},
		{"duplicate name", "[[node]]\nname = \"a\"\n[[node]]\nname = \"a\""},
		{"short rect", "[[node]]\nname = \"a\"\nrect = [0, 0, 1]"},
		{"rect and circle", "[[node]]\nname = \"a\"\nrect = [0, 0, 1, 1]\ncircle = [0, 0, 1]"},
		{"unknown kind", "[[node]]\nname = \"a\"\nkind = \"sprite\""},
		{"viewport without size", "[[node]]\nname = \"a\"\nkind = \"viewport\""},
		{"shape with children", "[[node]]\nname = \"a\"\n[[node.node]]\nname = \"b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.src)
			require.NoError(t, err)
			_, err = f.Build()
			assert.Error(t, err)
		})
	}
}

func TestApplyUnknownNode(t *testing.T) {
	_, tree := loadStack(t)
	d := arbor.NewDispatcher(tree.Root.Children())

	_, err := tree.Apply(d, Step{Type: "remove", Node: "ghost"})
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestApplyScrollNeedsViewport(t *testing.T) {
	_, tree := loadStack(t)
	d := arbor.NewDispatcher(tree.Root.Children())

	_, err := tree.Apply(d, Step{Type: "scroll", Node: "L1", Y: 10})
	assert.Error(t, err)

	_, err = tree.Apply(d, Step{Type: "scroll", Node: "list", Y: 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, tree.ByName["list"].(*arbor.Viewport).ScrollY)
}

func TestApplyRemoveDetaches(t *testing.T) {
	_, tree := loadStack(t)
	d := arbor.NewDispatcher(tree.Root.Children())

	_, err := tree.Apply(d, Step{Type: "remove", Node: "L3"})
	require.NoError(t, err)
	assert.False(t, tree.Root.Children().Contains(tree.ByName["L3"]))

	n, err := tree.Apply(d, Step{Type: "click", X: 1, Y: 1})
	require.NoError(t, err)
	assert.Same(t, tree.ByName["L2"], n)
}

func TestApplyScrollRehoversUnderStillPointer(t *testing.T) {
	_, tree := loadStack(t)
	d := arbor.NewDispatcher(tree.Root.Children())
	row0, row1 := tree.ByName["row0"], tree.ByName["row1"]

	n, err := tree.Apply(d, Step{Type: "pointermove", X: 410, Y: 25})
	require.NoError(t, err)
	require.Same(t, row0, n)

	_, err = tree.Apply(d, Step{Type: "scroll", Node: "list", Y: 30})
	require.NoError(t, err)
	assert.Same(t, row1, d.HoveredNode())
	assert.False(t, row0.(*arbor.Shape).Hovered())
}
