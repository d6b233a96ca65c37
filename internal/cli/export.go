package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/export"
	"github.com/mindweave/mindweave/pkg/mindmap"
	"github.com/mindweave/mindweave/pkg/pipeline"
)

// exportCommand creates the export command for text outlines.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [map.json]",
		Short: "Export a topic tree as a CSV or Markdown outline",
		Long: `Export a topic tree as a CSV or Markdown outline.

CSV output has one row per topic with its depth level. Markdown output
renders the root as a heading and the rest as a nested bullet list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatCSV, "export format: csv (default), md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")

	return cmd
}

func (c *CLI) runExport(input, format, output string) error {
	root, err := mindmap.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load map %s: %w", input, err)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = strings.TrimSuffix(base, ".map") + "." + format
	}

	switch format {
	case pipeline.FormatCSV:
		err = export.ExportCSV(root, outputPath)
	case pipeline.FormatMarkdown:
		err = export.ExportMarkdown(root, outputPath)
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid export format: %q (must be csv or md)", format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printStats(root.Count(), root.Depth(), false)
	return nil
}
