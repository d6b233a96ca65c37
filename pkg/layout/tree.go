package layout

import (
	"github.com/mindweave/mindweave/pkg/mindmap"
)

// Geometry constants, in user units (pixels in SVG output).
const (
	// CharWidth is the estimated horizontal advance per label character.
	CharWidth = 8.0

	// LabelPad is the horizontal padding added around a label inside its box.
	LabelPad = 20.0

	// MinBoxWidth and MaxBoxWidth clamp the computed box width. Degenerate
	// (empty) labels land on MinBoxWidth; very long labels are truncated by
	// the renderer rather than growing the box past MaxBoxWidth.
	MinBoxWidth = 80.0
	MaxBoxWidth = 220.0

	// BoxHeight is the fixed height of every node box.
	BoxHeight = 50.0

	// SiblingGap separates adjacent sibling subtrees horizontally.
	SiblingGap = 30.0

	// LevelGap separates consecutive depth levels vertically.
	LevelGap = 60.0

	// FramePad is the uniform margin applied during normalization.
	FramePad = 40.0
)

// arenaNode is the engine-internal working representation. Fields are
// write-once per pass: construction fills label/parent/children/depth and
// boxWidth, the bottom-up pass fills relativeX and subtreeWidth, and the
// top-down pass fills x and y.
type arenaNode struct {
	label    string
	parent   int // arena index, -1 for the root
	children []int
	depth    int

	boxWidth     float64
	relativeX    float64 // horizontal offset of this node's center from the parent's
	subtreeWidth float64

	x, y float64 // resolved coordinates; x is the box center, y the box top
}

// arena holds the whole working tree in a flat slice, indexed by node id.
// Index 0 is always the root.
type arena struct {
	nodes []arenaNode
}

// buildArena copies the topic tree into a fresh arena in pre-order,
// assigning depths and sized boxes. The source tree is not mutated and
// is assumed to be validated already.
func buildArena(root *mindmap.Topic) *arena {
	a := &arena{nodes: make([]arenaNode, 0, root.Count())}
	a.add(root, -1, 0)
	return a
}

func (a *arena) add(t *mindmap.Topic, parent, depth int) int {
	id := len(a.nodes)
	a.nodes = append(a.nodes, arenaNode{
		label:    t.Label,
		parent:   parent,
		depth:    depth,
		boxWidth: boxWidth(t.Label),
	})
	for _, c := range t.Children {
		child := a.add(c, id, depth+1)
		a.nodes[id].children = append(a.nodes[id].children, child)
	}
	return id
}

// boxWidth derives a node's box width from its label length. Empty labels
// are treated as zero-length rather than rejected.
func boxWidth(label string) float64 {
	w := float64(len([]rune(label)))*CharWidth + LabelPad
	if w < MinBoxWidth {
		return MinBoxWidth
	}
	if w > MaxBoxWidth {
		return MaxBoxWidth
	}
	return w
}
