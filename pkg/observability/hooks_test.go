package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	generateStarts int
	layoutStarts   int
}

func (h *recordingPipelineHooks) OnGenerateStart(ctx context.Context, topic string) {
	h.generateStarts++
}

func (h *recordingPipelineHooks) OnLayoutStart(ctx context.Context, topicCount int) {
	h.layoutStarts++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(ctx context.Context, keyType string) { h.misses++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Pipeline().OnGenerateStart(ctx, "topic")
	Pipeline().OnGenerateComplete(ctx, "topic", 10, time.Second, nil)
	Pipeline().OnLayoutStart(ctx, 10)
	Pipeline().OnLayoutComplete(ctx, time.Second, nil)
	Pipeline().OnRenderStart(ctx, []string{"svg"})
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Cache().OnCacheHit(ctx, "map")
	Cache().OnCacheMiss(ctx, "map")
	Cache().OnCacheSet(ctx, "map", 128)
}

func TestSetPipelineHooks(t *testing.T) {
	t.Cleanup(Reset)

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	Pipeline().OnGenerateStart(context.Background(), "topic")
	Pipeline().OnLayoutStart(context.Background(), 5)

	if h.generateStarts != 1 {
		t.Errorf("expected 1 generate start, got %d", h.generateStarts)
	}
	if h.layoutStarts != 1 {
		t.Errorf("expected 1 layout start, got %d", h.layoutStarts)
	}
}

func TestSetCacheHooks(t *testing.T) {
	t.Cleanup(Reset)

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	Cache().OnCacheHit(context.Background(), "layout")
	Cache().OnCacheMiss(context.Background(), "layout")
	Cache().OnCacheMiss(context.Background(), "artifact")

	if h.hits != 1 || h.misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %d and %d", h.hits, h.misses)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)
	SetPipelineHooks(nil)

	Pipeline().OnGenerateStart(context.Background(), "topic")
	if h.generateStarts != 1 {
		t.Error("nil registration should not replace existing hooks")
	}
}

func TestReset(t *testing.T) {
	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)
	Reset()

	Pipeline().OnGenerateStart(context.Background(), "topic")
	if h.generateStarts != 0 {
		t.Error("Reset should restore noop hooks")
	}
}
