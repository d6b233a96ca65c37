// Package pipeline provides the core mind map pipeline for mindweave.
//
// This package implements the complete generate → layout → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Generate: Obtain a topic tree from the content service or a local file
//  2. Layout: Compute box positions for the topic tree
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON, CSV, Markdown)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Topic:   "Gardening",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/cache"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/genai"
	"github.com/mindweave/mindweave/pkg/layout"
	"github.com/mindweave/mindweave/pkg/mindmap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth is the default generation depth requested from the
	// content service. Deeper trees are valid input but rarely useful on
	// screen, so the default stays shallow.
	DefaultMaxDepth = genai.DefaultMaxDepth

	// DefaultMaxBranch is the default maximum children per topic requested
	// from the content service.
	DefaultMaxBranch = genai.DefaultMaxBranch
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatDOT      = "dot"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatDOT:      true,
	FormatJSON:     true,
	FormatCSV:      true,
	FormatMarkdown: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Generator produces a topic tree for a prompt. The genai client satisfies
// this; tests substitute a stub.
type Generator interface {
	GenerateMap(ctx context.Context, topic string, opts genai.Options) (*mindmap.Topic, error)
}

// Options contains all configuration for the mind map pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	Topic     string `json:"topic,omitempty"`
	Input     string `json:"input,omitempty"` // path to a local topic tree JSON file
	MaxDepth  int    `json:"max_depth,omitempty"`
	MaxBranch int    `json:"max_branch,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger `json:"-"`
	Generator Generator   `json:"-"`
	APIKey    string      `json:"-"`
	BaseURL   string      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the topic tree the pipeline operated on.
	Root *mindmap.Topic

	// TreeHash is the content hash of the topic tree.
	TreeHash string

	// Layout contains the computed node positions.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TopicCount   int
	TreeDepth    int
	GenerateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the topic tree came from cache
	LayoutHit   bool // Whether the layout came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, dot, json, csv, md)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate checks required fields for the generate stage.
func (o *Options) ValidateForGenerate() error {
	if o.Topic == "" && o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "topic or input file is required")
	}
	if o.Topic != "" && o.Input != "" {
		return errors.New(errors.ErrCodeInvalidInput, "topic and input file are mutually exclusive")
	}
	if o.Topic != "" {
		if err := errors.ValidateTopicPrompt(o.Topic); err != nil {
			return err
		}
	}

	// Generate defaults
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxBranch == 0 {
		o.MaxBranch = DefaultMaxBranch
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// GenAIOptions returns the generation options for the content service client.
func (o *Options) GenAIOptions() genai.Options {
	return genai.Options{
		MaxDepth:  o.MaxDepth,
		MaxBranch: o.MaxBranch,
		Refresh:   o.Refresh,
	}
}

// MapKeyOpts returns cache key options for the generate stage.
func (o *Options) MapKeyOpts() cache.MapKeyOpts {
	return cache.MapKeyOpts{
		MaxDepth:  o.MaxDepth,
		MaxBranch: o.MaxBranch,
	}
}
