// Package export flattens a mind map into tabular and document formats.
//
// Exporters walk the original topic tree, not the computed layout: the
// output is one row (or bullet) per topic with its level, in pre-order, so
// the document reads in the same order the map was generated. Layout
// coordinates never appear in exports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mindweave/mindweave/pkg/mindmap"
)

// WriteCSV writes the tree as CSV with a level,topic header row followed by
// one row per topic in pre-order.
func WriteCSV(root *mindmap.Topic, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"level", "topic"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var writeErr error
	root.Walk(func(t *mindmap.Topic, level int) {
		if writeErr != nil {
			return
		}
		writeErr = cw.Write([]string{strconv.Itoa(level), t.Label})
	})
	if writeErr != nil {
		return fmt.Errorf("write row: %w", writeErr)
	}

	cw.Flush()
	return cw.Error()
}

// WriteMarkdown writes the tree as a Markdown outline: the root as a
// heading, every other topic as a bullet indented two spaces per level.
func WriteMarkdown(root *mindmap.Topic, w io.Writer) error {
	var b strings.Builder

	root.Walk(func(t *mindmap.Topic, level int) {
		if level == 0 {
			fmt.Fprintf(&b, "# %s\n\n", t.Label)
			return
		}
		fmt.Fprintf(&b, "%s- %s\n", strings.Repeat("  ", level-1), t.Label)
	})

	_, err := io.WriteString(w, b.String())
	return err
}

// ExportCSV writes the tree to a CSV file at path.
func ExportCSV(root *mindmap.Topic, path string) error {
	return toFile(path, func(f io.Writer) error { return WriteCSV(root, f) })
}

// ExportMarkdown writes the tree to a Markdown file at path.
func ExportMarkdown(root *mindmap.Topic, path string) error {
	return toFile(path, func(f io.Writer) error { return WriteMarkdown(root, f) })
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
