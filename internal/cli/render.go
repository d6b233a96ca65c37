package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/pkg/pipeline"
)

// renderCommand creates the render command for producing visual artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		keyFlag    string
		baseURL    string
		topic      string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [map.json]",
		Short: "Render a mind map to SVG and other formats",
		Long: `Render a mind map to SVG and other formats.

The render command runs the full layout and render pipeline on a map.json
file (produced by 'generate') or, with --topic, generates the tree first.
Supported formats: svg (default), png, dot, json, csv, md.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Input = args[0]
			}
			opts.Topic = topic
			opts.APIKey = apiKey(keyFlag)
			opts.BaseURL = baseURL
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Generate flags (used with --topic)
	cmd.Flags().StringVar(&topic, "topic", "", "generate the tree from a topic prompt instead of a file")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum tree depth to request")
	cmd.Flags().IntVar(&opts.MaxBranch, "max-branch", 0, "maximum children per topic to request")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and regenerate")
	cmd.Flags().StringVar(&keyFlag, "api-key", "", "content service API key (or MINDWEAVE_API_KEY)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "content service base URL")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json, csv, md (comma-separated)")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering mind map...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	input := opts.Input
	if input == "" {
		input = slugify(opts.Topic) + ".map.json"
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	}); err != nil {
		return err
	}

	printStats(result.Stats.TopicCount, result.Stats.TreeDepth, result.CacheInfo.RenderHit)
	return nil
}

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // input path, used to derive output names
	output    string // explicit output path or base path
}

// writeArtifacts writes each rendered format to disk. With a single format
// the output flag is used as-is; with several it becomes a base path and
// each file gets the format as its extension.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)

	printSuccess("Render complete")
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing artifact for format %s", format)
		}

		path := base + "." + format
		if p.output != "" && len(p.formats) == 1 {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file
// paths. If output is empty, it strips known extensions from input. If
// output has a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".map")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
