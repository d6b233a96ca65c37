package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/pkg/mindmap"
	"github.com/mindweave/mindweave/pkg/pipeline"
)

// generateCommand creates the generate command for fetching topic trees.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		keyFlag string
		baseURL string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a topic tree from the content service",
		Long: `Generate a topic tree from the content service.

The generate command sends a topic prompt to the content service and writes
the returned topic tree as a map.json file. The tree can then be laid out
with 'layout' and rendered with 'render'.

Responses are cached locally, so repeating a prompt with the same options
is free. Use --refresh to force a new generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Topic = args[0]
			opts.APIKey = apiKey(keyFlag)
			opts.BaseURL = baseURL
			return c.runGenerate(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: map.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum tree depth to request")
	cmd.Flags().IntVar(&opts.MaxBranch, "max-branch", 0, "maximum children per topic to request")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and regenerate")
	cmd.Flags().StringVar(&keyFlag, "api-key", "", "content service API key (or MINDWEAVE_API_KEY)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "content service base URL")

	return cmd
}

// runGenerate fetches the tree and writes it to disk.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating map for %q...", opts.Topic))
	spinner.Start()

	root, cacheHit, err := runner.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return fmt.Errorf("generate: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = slugify(opts.Topic) + ".map.json"
	}

	if err := mindmap.WriteFile(root, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Map generated")
	printFile(outputPath)
	printStats(root.Count(), root.Depth(), cacheHit)
	printNewline()
	printNextStep("Layout", "mindweave layout "+outputPath)

	return nil
}

// slugify turns a topic prompt into a safe file name fragment.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	out := b.String()
	if out == "" {
		return "map"
	}
	return out
}
