package behavior_test

import (
	"testing"

	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *behavior.Tree {
	return behavior.NewTree(behavior.ParallelAny("root",
		behavior.Sequence("drive",
			behavior.Leaf("a", script(behavior.Running, behavior.Success)),
			behavior.Leaf("b", script(behavior.Success)),
		),
		behavior.Leaf("guard", script(behavior.Running)),
	))
}

func TestTree_Leaves(t *testing.T) {
	tree := sampleTree()
	var names []string
	for _, n := range tree.Leaves() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"a", "b", "guard"}, names)
}

func TestTree_Find(t *testing.T) {
	tree := sampleTree()
	n, ok := tree.Find("drive")
	require.True(t, ok)
	assert.Equal(t, behavior.PolicySequence, n.Policy())

	_, ok = tree.Find("missing")
	assert.False(t, ok)
}

func TestTree_OnTerminateSeesEveryTermination(t *testing.T) {
	tree := sampleTree()
	got := map[string]behavior.Status{}
	tree.OnTerminate(func(n *behavior.Node, st behavior.Status) {
		_, dup := got[n.Name()]
		assert.False(t, dup, "%s terminated twice", n.Name())
		got[n.Name()] = st
	})

	assert.Equal(t, behavior.Running, tree.Tick())
	assert.Equal(t, behavior.Success, tree.Tick())
	assert.Equal(t, 2, tree.Ticks())

	assert.Equal(t, map[string]behavior.Status{
		"a":     behavior.Success,
		"b":     behavior.Success,
		"drive": behavior.Success,
		"guard": behavior.Invalid,
		"root":  behavior.Success,
	}, got)
}

func TestTree_String(t *testing.T) {
	tree := sampleTree()
	tree.Tick()
	want := "+ root (parallel_any) [RUNNING]\n" +
		"  + drive (sequence) [RUNNING]\n" +
		"    - a [RUNNING]\n" +
		"    - b [INVALID]\n" +
		"  - guard [RUNNING]\n"
	assert.Equal(t, want, tree.String())
}
