package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mindweave/mindweave/pkg/export"
	"github.com/mindweave/mindweave/pkg/layout"
	"github.com/mindweave/mindweave/pkg/mindmap"
	"github.com/mindweave/mindweave/pkg/render"
)

// RenderFromLayout renders the requested formats from a computed layout.
// SVG and JSON come straight from the layout; PNG and DOT go through
// graphviz; CSV and Markdown are outline exports of the topic tree.
func RenderFromLayout(ctx context.Context, res *layout.Result, root *mindmap.Topic, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, format, res, root)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, res *layout.Result, root *mindmap.Topic) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(res), nil
	case FormatJSON:
		return layout.MarshalResult(res)
	case FormatDOT:
		return []byte(render.ToDOT(root)), nil
	case FormatPNG:
		return render.RenderDOTPNG(ctx, render.ToDOT(root))
	case FormatCSV:
		var buf bytes.Buffer
		if err := export.WriteCSV(root, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := export.WriteMarkdown(root, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ValidateFormat(format)
	}
}
