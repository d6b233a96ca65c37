package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mindweave/mindweave/pkg/layout"
	"github.com/mindweave/mindweave/pkg/mindmap"
)

func buildLayout(t *testing.T, root *mindmap.Topic) *layout.Result {
	t.Helper()
	res, err := layout.Build(root)
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	return res
}

func sampleTree() *mindmap.Topic {
	return &mindmap.Topic{
		Label: "Root",
		Children: []*mindmap.Topic{
			{Label: "Left"},
			{Label: "Right", Children: []*mindmap.Topic{{Label: "Deep"}}},
		},
	}
}

func TestRenderSVGStructure(t *testing.T) {
	res := buildLayout(t, sampleTree())
	svg := string(RenderSVG(res))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("missing svg root element")
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Error("unterminated svg document")
	}

	wantViewBox := fmt.Sprintf(`viewBox="0 0 %.1f %.1f"`, res.TotalWidth, res.TotalHeight)
	if !strings.Contains(svg, wantViewBox) {
		t.Errorf("viewBox missing or wrong, want %s", wantViewBox)
	}

	// One rect per node, one curve per parent-child pair.
	if got := strings.Count(svg, "<rect id="); got != len(res.Nodes) {
		t.Errorf("rects = %d, want %d", got, len(res.Nodes))
	}
	if got := strings.Count(svg, "<path d="); got != len(res.Nodes)-1 {
		t.Errorf("curves = %d, want %d", got, len(res.Nodes)-1)
	}

	for _, label := range []string{"Root", "Left", "Right", "Deep"} {
		if !strings.Contains(svg, ">"+label+"</text>") {
			t.Errorf("label %q not rendered", label)
		}
	}
}

func TestRenderSVGUsesLayoutCoordinates(t *testing.T) {
	res := buildLayout(t, sampleTree())
	svg := string(RenderSVG(res))

	// Each box must be drawn at (X - width/2, Y) exactly as computed.
	for _, n := range res.Nodes {
		want := fmt.Sprintf(`<rect id="node-%d" x="%.1f" y="%.1f"`, n.ID, n.Left(), n.Y)
		if !strings.Contains(svg, want) {
			t.Errorf("node %d not drawn at layout coordinates: want %s", n.ID, want)
		}
	}
}

func TestRenderSVGCurveAnchors(t *testing.T) {
	res := buildLayout(t, &mindmap.Topic{
		Label:    "p",
		Children: []*mindmap.Topic{{Label: "c"}},
	})
	svg := string(RenderSVG(res))

	p, c := res.Nodes[0], res.Nodes[1]
	ox, oy := p.AnchorOut()
	ix, iy := c.AnchorIn()

	start := fmt.Sprintf(`M %.1f %.1f`, ox, oy)
	end := fmt.Sprintf(`%.1f %.1f" fill="none"`, ix, iy)
	if !strings.Contains(svg, start) {
		t.Errorf("curve does not start at parent bottom-center anchor %s", start)
	}
	if !strings.Contains(svg, end) {
		t.Errorf("curve does not end at child top-center anchor %s", end)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	res := buildLayout(t, sampleTree())

	withBG := string(RenderSVG(res, WithBackground("#ffffff")))
	if !strings.Contains(withBG, `fill="#ffffff"`) {
		t.Error("background rect missing")
	}

	noLabels := string(RenderSVG(res, WithoutLabels()))
	if strings.Contains(noLabels, "<text") {
		t.Error("labels rendered despite WithoutLabels")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	res := buildLayout(t, &mindmap.Topic{Label: `Ions & "Salts" <aq>`})
	svg := string(RenderSVG(res))

	if strings.Contains(svg, "<aq>") {
		t.Error("label markup not escaped")
	}
	if !strings.Contains(svg, "&amp;") {
		t.Error("ampersand not escaped")
	}
}

func TestRenderSVGTruncatesOversizedLabels(t *testing.T) {
	long := strings.Repeat("x", 100)
	res := buildLayout(t, &mindmap.Topic{Label: long})
	svg := string(RenderSVG(res))

	if strings.Contains(svg, long) {
		t.Error("oversized label rendered untruncated")
	}
	if !strings.Contains(svg, "…") {
		t.Error("truncated label missing ellipsis")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleTree())

	if !strings.HasPrefix(dot, "digraph mindmap {") {
		t.Error("missing digraph header")
	}
	for _, want := range []string{
		`n0 [label="Root"]`,
		`n0 -> n1`,
		`n2 -> n3`, // Right -> Deep
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDuplicateLabels(t *testing.T) {
	dot := ToDOT(&mindmap.Topic{
		Label:    "same",
		Children: []*mindmap.Topic{{Label: "same"}, {Label: "same"}},
	})

	// Three distinct node ids despite identical labels.
	for _, id := range []string{"n0", "n1", "n2"} {
		if !strings.Contains(dot, id+" [label=") {
			t.Errorf("missing node %s", id)
		}
	}
}
