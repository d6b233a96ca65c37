package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/mindmap"
)

func mustBuild(t *testing.T, root *mindmap.Topic) *Result {
	t.Helper()
	res, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func topic(label string, children ...*mindmap.Topic) *mindmap.Topic {
	return &mindmap.Topic{Label: label, Children: children}
}

// find returns the first node with the given label.
func find(t *testing.T, res *Result, label string) Node {
	t.Helper()
	for _, n := range res.Nodes {
		if n.Label == label {
			return n
		}
	}
	t.Fatalf("no node labeled %q", label)
	return Node{}
}

func TestSingleNode(t *testing.T) {
	res := mustBuild(t, topic("Root"))

	if len(res.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(res.Nodes))
	}
	n := res.Nodes[0]
	if n.Parent != -1 {
		t.Errorf("root parent = %d, want -1", n.Parent)
	}
	if want := n.Width + 2*FramePad; res.TotalWidth != want {
		t.Errorf("TotalWidth = %v, want %v", res.TotalWidth, want)
	}
	if want := BoxHeight + 2*FramePad; res.TotalHeight != want {
		t.Errorf("TotalHeight = %v, want %v", res.TotalHeight, want)
	}
	if n.Left() != FramePad {
		t.Errorf("Left = %v, want %v", n.Left(), FramePad)
	}
	if n.Y != FramePad {
		t.Errorf("Y = %v, want %v", n.Y, FramePad)
	}
}

func TestBoxWidthClamping(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{"empty label uses minimum", "", MinBoxWidth},
		{"short label uses minimum", "ab", MinBoxWidth},
		{"medium label scales", strings.Repeat("x", 15), 15*CharWidth + LabelPad},
		{"long label clamps to maximum", strings.Repeat("x", 80), MaxBoxWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustBuild(t, topic(tt.label))
			if got := res.Nodes[0].Width; got != tt.want {
				t.Errorf("Width = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalancedTreeSymmetry(t *testing.T) {
	// A over (B over D, C over E): B and C symmetric around A, D under B,
	// E under C.
	res := mustBuild(t, topic("A",
		topic("B", topic("D")),
		topic("C", topic("E")),
	))

	a := find(t, res, "A")
	b := find(t, res, "B")
	c := find(t, res, "C")
	d := find(t, res, "D")
	e := find(t, res, "E")

	if math.Abs((a.X-b.X)-(c.X-a.X)) > 1e-9 {
		t.Errorf("B and C not symmetric around A: B.X=%v A.X=%v C.X=%v", b.X, a.X, c.X)
	}
	if d.X != b.X {
		t.Errorf("D.X = %v, want directly under B at %v", d.X, b.X)
	}
	if e.X != c.X {
		t.Errorf("E.X = %v, want directly under C at %v", e.X, c.X)
	}

	// Sibling subtree intervals must not intersect.
	bRight := b.X + b.SubtreeWidth/2
	cLeft := c.X - c.SubtreeWidth/2
	if bRight > cLeft {
		t.Errorf("B subtree [%v] overlaps C subtree [%v]", bRight, cLeft)
	}
}

func TestUnbalancedFanOut(t *testing.T) {
	// First child carries five grandchildren, second child none. The
	// narrow sibling must clear the wide subtree and the root must stay
	// centered over the combined span.
	wide := topic("wide",
		topic("g1"), topic("g2"), topic("g3"), topic("g4"), topic("g5"))
	narrow := topic("narrow")
	res := mustBuild(t, topic("root", wide, narrow))

	w := find(t, res, "wide")
	n := find(t, res, "narrow")
	r := find(t, res, "root")

	wideRight := w.X + w.SubtreeWidth/2
	narrowLeft := n.X - n.SubtreeWidth/2
	if wideRight > narrowLeft {
		t.Errorf("wide subtree right edge %v overlaps narrow subtree left edge %v", wideRight, narrowLeft)
	}

	// Root centered over the block spanned by both children's subtrees.
	blockLeft := w.X - w.SubtreeWidth/2
	blockRight := n.X + n.SubtreeWidth/2
	center := (blockLeft + blockRight) / 2
	if math.Abs(r.X-center) > 1e-9 {
		t.Errorf("root.X = %v, want centered at %v", r.X, center)
	}
}

// wideTestTree builds an irregular tree that exercises deep nesting and
// mixed fan-out with wildly varying label lengths.
func wideTestTree() *mindmap.Topic {
	return topic("Machine Learning",
		topic("Supervised",
			topic("Linear Regression and Regularization Techniques"),
			topic("Trees", topic("CART"), topic("Random Forest"), topic("Gradient Boosted Decision Trees")),
			topic("SVM")),
		topic("Unsupervised",
			topic("Clustering", topic("k-means"), topic("DBSCAN")),
			topic("Dimensionality Reduction")),
		topic("RL"),
	)
}

func TestNoSiblingOverlap(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	// For every node, check all sibling pairs' subtree intervals.
	for i := range res.Nodes {
		kids := res.Children(i)
		for a := 0; a < len(kids); a++ {
			for b := a + 1; b < len(kids); b++ {
				na, nb := res.Nodes[kids[a]], res.Nodes[kids[b]]
				aLo, aHi := na.X-na.SubtreeWidth/2, na.X+na.SubtreeWidth/2
				bLo, bHi := nb.X-nb.SubtreeWidth/2, nb.X+nb.SubtreeWidth/2
				if aHi > bLo && bHi > aLo {
					t.Errorf("siblings %q [%v,%v] and %q [%v,%v] overlap",
						na.Label, aLo, aHi, nb.Label, bLo, bHi)
				}
			}
		}
	}
}

func TestContainment(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	for _, n := range res.Nodes {
		if n.Left() < FramePad-1e-9 {
			t.Errorf("%q left edge %v crosses the frame margin", n.Label, n.Left())
		}
		if n.Right() > res.TotalWidth-FramePad+1e-9 {
			t.Errorf("%q right edge %v exceeds width %v", n.Label, n.Right(), res.TotalWidth)
		}
		if n.Bottom() > res.TotalHeight-FramePad+1e-9 {
			t.Errorf("%q bottom edge %v exceeds height %v", n.Label, n.Bottom(), res.TotalHeight)
		}
		if n.SubtreeWidth < n.Width {
			t.Errorf("%q subtree width %v below box width %v", n.Label, n.SubtreeWidth, n.Width)
		}
	}
}

func TestDepthMonotonicY(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	yByDepth := map[int]float64{}
	for _, n := range res.Nodes {
		if y, ok := yByDepth[n.Depth]; ok {
			if y != n.Y {
				t.Errorf("depth %d has two y values: %v and %v", n.Depth, y, n.Y)
			}
			continue
		}
		yByDepth[n.Depth] = n.Y
	}
	for d := 1; ; d++ {
		y, ok := yByDepth[d]
		if !ok {
			break
		}
		if y <= yByDepth[d-1] {
			t.Errorf("y not increasing: depth %d at %v, depth %d at %v", d-1, yByDepth[d-1], d, y)
		}
	}
}

func TestDeterminism(t *testing.T) {
	first := mustBuild(t, wideTestTree())
	second := mustBuild(t, wideTestTree())

	if len(first.Nodes) != len(second.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(first.Nodes), len(second.Nodes))
	}
	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]
		if a != b {
			t.Errorf("node %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
	if first.TotalWidth != second.TotalWidth || first.TotalHeight != second.TotalHeight {
		t.Error("bounds differ between runs")
	}
}

func TestParentsPrecedeChildren(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	for i, n := range res.Nodes {
		if i == 0 {
			if n.Parent != -1 {
				t.Errorf("first node parent = %d, want -1", n.Parent)
			}
			continue
		}
		if n.Parent < 0 || n.Parent >= i {
			t.Errorf("node %d (%q) parent index %d does not precede it", i, n.Label, n.Parent)
		}
		if res.Nodes[n.Parent].Depth != n.Depth-1 {
			t.Errorf("node %q depth %d under parent depth %d", n.Label, n.Depth, res.Nodes[n.Parent].Depth)
		}
	}
}

func TestBreadthFirstOrder(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	for i := 1; i < len(res.Nodes); i++ {
		if res.Nodes[i].Depth < res.Nodes[i-1].Depth {
			t.Errorf("depth decreases at index %d: %d after %d",
				i, res.Nodes[i].Depth, res.Nodes[i-1].Depth)
		}
	}
}

func TestParentCenteredOverChildren(t *testing.T) {
	res := mustBuild(t, wideTestTree())

	for i, n := range res.Nodes {
		kids := res.Children(i)
		if len(kids) == 0 {
			continue
		}
		first := res.Nodes[kids[0]]
		last := res.Nodes[kids[len(kids)-1]]
		blockCenter := ((first.X - first.SubtreeWidth/2) + (last.X + last.SubtreeWidth/2)) / 2
		if math.Abs(n.X-blockCenter) > 1e-9 {
			t.Errorf("%q at %v not centered over children block center %v", n.Label, n.X, blockCenter)
		}
	}
}

func TestBuildRejectsInvalidTrees(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		_, err := Build(nil)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Build(nil) = %v, want INVALID_TREE", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		root := topic("a")
		root.Children = []*mindmap.Topic{root}
		_, err := Build(root)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Build = %v, want INVALID_TREE", err)
		}
	})
}

func TestLargeTreeDegradesGracefully(t *testing.T) {
	// 4 levels of fan-out 6: 1 + 6 + 36 + 216 nodes.
	var grow func(depth int) *mindmap.Topic
	grow = func(depth int) *mindmap.Topic {
		n := topic("n")
		if depth == 0 {
			return n
		}
		for i := 0; i < 6; i++ {
			n.Children = append(n.Children, grow(depth-1))
		}
		return n
	}
	res := mustBuild(t, grow(3))

	if got := len(res.Nodes); got != 259 {
		t.Fatalf("nodes = %d, want 259", got)
	}
	if res.TotalWidth <= 0 || res.TotalHeight <= 0 {
		t.Error("degenerate bounds on large tree")
	}
}

func TestAnchors(t *testing.T) {
	res := mustBuild(t, topic("p", topic("c")))

	p := find(t, res, "p")
	ox, oy := p.AnchorOut()
	if ox != p.X || oy != p.Y+p.Height {
		t.Errorf("AnchorOut = (%v,%v), want bottom-center (%v,%v)", ox, oy, p.X, p.Y+p.Height)
	}

	c := find(t, res, "c")
	ix, iy := c.AnchorIn()
	if ix != c.X || iy != c.Y {
		t.Errorf("AnchorIn = (%v,%v), want top-center (%v,%v)", ix, iy, c.X, c.Y)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	res := mustBuild(t, topic("A", topic("B"), topic("C")))

	data, err := MarshalResult(res)
	if err != nil {
		t.Fatalf("MarshalResult: %v", err)
	}
	back, err := UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult: %v", err)
	}
	if len(back.Nodes) != len(res.Nodes) {
		t.Fatalf("nodes = %d, want %d", len(back.Nodes), len(res.Nodes))
	}
	if back.TotalWidth != res.TotalWidth || back.TotalHeight != res.TotalHeight {
		t.Error("bounds changed in round trip")
	}
}

func TestUnmarshalRejectsEmpty(t *testing.T) {
	if _, err := UnmarshalResult([]byte(`{"nodes":[]}`)); err == nil {
		t.Error("UnmarshalResult accepted an empty layout")
	}
}
