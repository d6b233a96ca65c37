package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/cache"
	"github.com/mindweave/mindweave/pkg/genai"
	"github.com/mindweave/mindweave/pkg/layout"
	"github.com/mindweave/mindweave/pkg/mindmap"
	"github.com/mindweave/mindweave/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Generate
	generateStart := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, opts.Topic)
	root, generateHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		observability.Pipeline().OnGenerateComplete(ctx, opts.Topic, 0, time.Since(generateStart), err)
		return nil, fmt.Errorf("generate: %w", err)
	}
	observability.Pipeline().OnGenerateComplete(ctx, opts.Topic, root.Count(), time.Since(generateStart), nil)
	result.Root = root
	result.Stats.GenerateTime = time.Since(generateStart)
	result.Stats.TopicCount = root.Count()
	result.Stats.TreeDepth = root.Depth()
	result.CacheInfo.GenerateHit = generateHit

	// Compute tree hash for cache keys and API responses
	if treeData, err := mindmap.Marshal(root); err == nil {
		result.TreeHash = cache.Hash(treeData)
	}

	r.Logger.Info("obtained topic tree",
		"topics", result.Stats.TopicCount,
		"depth", result.Stats.TreeDepth,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, result.Stats.TopicCount)
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, root, opts)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(res.Nodes),
		"width", res.TotalWidth,
		"height", res.TotalHeight,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, root, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo obtains a topic tree with caching and returns cache
// hit info. When opts.Input is set the tree is read from disk and caching is
// skipped, since reading a local file is cheaper than a cache round trip.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*mindmap.Topic, bool, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.Input != "" {
		root, err := mindmap.ReadFile(opts.Input)
		if err != nil {
			return nil, false, err
		}
		return root, false, nil
	}

	cacheKey := r.Keyer.MapKey(opts.Topic, opts.MapKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			root, err := mindmap.Read(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "map")
				return root, true, nil // Cache hit
			}
			// Corrupt entry: drop it and generate fresh.
			_ = r.Cache.Delete(ctx, cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "map")
	}

	root, err := r.generator(opts).GenerateMap(ctx, opts.Topic, opts.GenAIOptions())
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := mindmap.Marshal(root); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMap)
		observability.Cache().OnCacheSet(ctx, "map", len(data))
	}

	return root, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*mindmap.Topic, error) {
	root, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return root, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, root *mindmap.Topic, opts Options) (*layout.Result, bool, error) {
	r.applyLogger(&opts)

	treeData, err := mindmap.Marshal(root)
	if err != nil {
		return nil, false, fmt.Errorf("serialize tree for cache key: %w", err)
	}
	treeHash := cache.Hash(treeData)
	cacheKey := r.Keyer.LayoutKey(treeHash, cache.LayoutKeyOpts{})

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := layout.UnmarshalResult(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	res, err := layout.Build(root)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := layout.MarshalResult(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return res, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, root *mindmap.Topic, opts Options) (*layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, root, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *layout.Result, root *mindmap.Topic, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := layout.MarshalResult(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format})
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderFromLayout(ctx, res, root, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format})
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res *layout.Result, root *mindmap.Topic, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, root, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// generator returns the configured Generator, building a content service
// client on the fly when none was injected. The client gets no cache of its
// own: the runner already caches generated trees.
func (r *Runner) generator(opts Options) Generator {
	if opts.Generator != nil {
		return opts.Generator
	}
	clientOpts := []genai.ClientOption{}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, genai.WithBaseURL(opts.BaseURL))
	}
	return genai.NewClient(opts.APIKey, nil, clientOpts...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
