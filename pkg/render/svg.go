// Package render turns a computed layout into drawable artifacts.
//
// Two paths exist:
//   - the native SVG sink, which draws each node box at the exact
//     coordinates the layout engine produced and connects parents to
//     children with smooth cubic curves between their anchor points
//   - the Graphviz path, which re-expresses the topic tree as DOT and
//     delegates placement to Graphviz for an alternative view
//
// Sinks never move a node: layout coordinates are consumed as-is.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/mindweave/mindweave/pkg/layout"
)

// Depth palette for node boxes; the root gets the first entry and deeper
// levels cycle through the rest.
var depthFills = []string{
	"#4c6ef5", // root: indigo
	"#15aabf", // cyan
	"#40c057", // green
	"#fab005", // amber
	"#fa5252", // red
	"#be4bdb", // grape
}

const (
	cornerRadius = 8.0
	fontSize     = 14.0
	strokeColor  = "#343a40"
	curveColor   = "#868e96"
)

// SVGOption configures the SVG sink.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	showLabels bool
}

// WithBackground sets a background fill (default transparent).
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithoutLabels suppresses label text, leaving only boxes and curves.
func WithoutLabels() SVGOption {
	return func(r *svgRenderer) { r.showLabels = false }
}

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(res *layout.Result, opts ...SVGOption) []byte {
	r := svgRenderer{showLabels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		res.TotalWidth, res.TotalHeight, res.TotalWidth, res.TotalHeight)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			res.TotalWidth, res.TotalHeight, r.background)
	}

	// Curves first so boxes draw over their endpoints.
	for _, n := range res.Nodes {
		if n.Parent < 0 {
			continue
		}
		renderCurve(&buf, res.Nodes[n.Parent], n)
	}

	for _, n := range res.Nodes {
		renderBox(&buf, n)
	}

	if r.showLabels {
		for _, n := range res.Nodes {
			renderLabel(&buf, n)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderCurve draws a cubic curve from the parent's bottom-center anchor to
// the child's top-center anchor, with control points pulled vertically so
// the curve leaves and enters the boxes straight.
func renderCurve(buf *bytes.Buffer, parent, child layout.Node) {
	x1, y1 := parent.AnchorOut()
	x2, y2 := child.AnchorIn()
	midY := (y1 + y2) / 2

	fmt.Fprintf(buf,
		`  <path d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		x1, y1, x1, midY, x2, midY, x2, y2, curveColor)
}

func renderBox(buf *bytes.Buffer, n layout.Node) {
	fill := depthFills[n.Depth%len(depthFills)]
	fmt.Fprintf(buf,
		`  <rect id="node-%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		n.ID, n.Left(), n.Y, n.Width, n.Height, cornerRadius, fill, strokeColor)
}

func renderLabel(buf *bytes.Buffer, n layout.Node) {
	fmt.Fprintf(buf,
		`  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%.0f" fill="white">%s</text>`+"\n",
		n.X, n.Y+n.Height/2, fontSize, html.EscapeString(truncateLabel(n)))
}

// truncateLabel shortens labels that would not fit their (clamped) box.
func truncateLabel(n layout.Node) string {
	runes := []rune(n.Label)
	fit := int((n.Width - layout.LabelPad) / layout.CharWidth)
	if len(runes) <= fit || fit < 1 {
		return n.Label
	}
	if fit <= 1 {
		return string(runes[:fit])
	}
	return string(runes[:fit-1]) + "…"
}
