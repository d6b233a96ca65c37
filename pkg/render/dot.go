package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/mindweave/mindweave/pkg/mindmap"
)

// ToDOT converts a topic tree to Graphviz DOT format. Node identifiers are
// pre-order indices, so duplicate labels are kept distinct.
func ToDOT(root *mindmap.Topic) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	id := 0
	var emit func(t *mindmap.Topic) int
	emit = func(t *mindmap.Topic) int {
		self := id
		id++
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", self, t.Label)
		for _, c := range t.Children {
			child := emit(c)
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", self, child)
		}
		return self
	}
	emit(root)

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOTSVG renders a DOT string to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG)
}

// RenderDOTPNG renders a DOT string to PNG using Graphviz.
func RenderDOTPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
