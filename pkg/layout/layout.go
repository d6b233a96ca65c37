package layout

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mindweave/mindweave/pkg/mindmap"
)

// Node is one placed topic box in a finished layout. X is the horizontal
// center of the box; Y is its top edge. Parent is an index into
// [Result.Nodes] (-1 for the root) and, because nodes are emitted
// breadth-first, always refers to an earlier element.
type Node struct {
	ID           int     `json:"id"`
	Label        string  `json:"label"`
	Parent       int     `json:"parent"`
	Depth        int     `json:"depth"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	SubtreeWidth float64 `json:"subtree_width"`
}

// Left returns the x coordinate of the box's left edge.
func (n Node) Left() float64 { return n.X - n.Width/2 }

// Right returns the x coordinate of the box's right edge.
func (n Node) Right() float64 { return n.X + n.Width/2 }

// Bottom returns the y coordinate of the box's bottom edge.
func (n Node) Bottom() float64 { return n.Y + n.Height }

// AnchorOut returns the point where connectors leave this node
// (bottom-center of the box).
func (n Node) AnchorOut() (x, y float64) { return n.X, n.Y + n.Height }

// AnchorIn returns the point where connectors enter this node
// (top-center of the box).
func (n Node) AnchorIn() (x, y float64) { return n.X, n.Y }

// Result is a finished layout. Nodes are in breadth-first order, parents
// before children. TotalWidth and TotalHeight bound every node box plus a
// FramePad margin on all sides. A Result is immutable once returned.
type Result struct {
	Nodes       []Node  `json:"nodes"`
	TotalWidth  float64 `json:"total_width"`
	TotalHeight float64 `json:"total_height"`
}

// Root returns the root node. Valid only for non-empty results.
func (r *Result) Root() Node { return r.Nodes[0] }

// Children returns the indices of node i's children, in their original
// order.
func (r *Result) Children(i int) []int {
	var out []int
	for j := i + 1; j < len(r.Nodes); j++ {
		if r.Nodes[j].Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// Build validates the topic tree and computes a complete layout for it.
// Every call allocates a fresh working arena, so concurrent calls on the
// same or different trees are safe.
//
// Errors carry the INVALID_TREE code and mean no layout exists at all;
// Build never returns a partial result.
func Build(root *mindmap.Topic) (*Result, error) {
	if err := mindmap.Validate(root, 0); err != nil {
		return nil, err
	}

	a := buildArena(root)
	a.measure(0)
	minX, maxX, maxY := a.resolve()
	a.normalize(minX)

	res := &Result{
		TotalWidth:  (maxX - minX) + 2*FramePad,
		TotalHeight: maxY + BoxHeight + 2*FramePad,
	}
	res.Nodes = a.flatten()
	return res, nil
}

// measure is the bottom-up pass: post-order computation of subtree widths
// and of every child's offset relative to its parent. A leaf's subtree is
// just its own box; an internal node lays its children side by side with
// SiblingGap between them and centers the block under itself.
func (a *arena) measure(id int) {
	n := &a.nodes[id]
	if len(n.children) == 0 {
		n.subtreeWidth = n.boxWidth
		return
	}

	span := float64(len(n.children)-1) * SiblingGap
	for _, c := range n.children {
		a.measure(c)
		span += a.nodes[c].subtreeWidth
	}

	// First child's center sits at the left edge of the block; each
	// following child advances by the two half-widths plus the gap.
	cursor := -span / 2
	for i, c := range n.children {
		child := &a.nodes[c]
		if i > 0 {
			cursor += SiblingGap
		}
		child.relativeX = cursor + child.subtreeWidth/2
		cursor += child.subtreeWidth
	}

	n.subtreeWidth = math.Max(n.boxWidth, span)
}

// resolve is the top-down pass: pre-order resolution of absolute
// coordinates and accumulation of the global bounds. The root sits at
// x = 0; every other node's x is its parent's x plus its relative offset.
func (a *arena) resolve() (minX, maxX, maxY float64) {
	root := &a.nodes[0]
	root.x = 0
	root.y = 0
	minX = root.x - root.boxWidth/2
	maxX = root.x + root.boxWidth/2

	// Pre-order: parents appear before children in the arena, so a single
	// forward sweep resolves every node after its parent.
	for i := 1; i < len(a.nodes); i++ {
		n := &a.nodes[i]
		n.x = a.nodes[n.parent].x + n.relativeX
		n.y = float64(n.depth) * (BoxHeight + LevelGap)

		minX = math.Min(minX, n.x-n.boxWidth/2)
		maxX = math.Max(maxX, n.x+n.boxWidth/2)
		maxY = math.Max(maxY, n.y)
	}
	return minX, maxX, maxY
}

// normalize shifts every node into positive coordinate space with a
// uniform FramePad margin. It must run exactly once, after both traversal
// passes have completed.
func (a *arena) normalize(minX float64) {
	for i := range a.nodes {
		a.nodes[i].x += -minX + FramePad
		a.nodes[i].y += FramePad
	}
}

// flatten emits the arena breadth-first so parents always precede their
// children, remapping parent references to result indices.
func (a *arena) flatten() []Node {
	out := make([]Node, 0, len(a.nodes))
	newIndex := make([]int, len(a.nodes))

	queue := []int{0}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		n := a.nodes[id]
		parent := -1
		if n.parent >= 0 {
			parent = newIndex[n.parent]
		}
		newIndex[id] = len(out)
		out = append(out, Node{
			ID:           len(out),
			Label:        n.label,
			Parent:       parent,
			Depth:        n.depth,
			X:            n.x,
			Y:            n.y,
			Width:        n.boxWidth,
			Height:       BoxHeight,
			SubtreeWidth: n.subtreeWidth,
		})
		queue = append(queue, n.children...)
	}
	return out
}

// MarshalResult serializes a layout to pretty-printed JSON bytes.
func MarshalResult(r *Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes JSON bytes into a layout.
func UnmarshalResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(r.Nodes) == 0 {
		return nil, fmt.Errorf("layout must contain nodes")
	}
	return &r, nil
}
