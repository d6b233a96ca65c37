// Package genai is the client for the generative content service that
// produces topic trees.
//
// The service accepts a topic prompt and responds with a recursive
// {topic, children} JSON document. Its output is untrusted: trees are
// validated structurally (cycle and depth guards) before any caller sees
// them, and the service's informal limits (~5 levels, modest fan-out) are
// never assumed.
//
// Responses are cached through [cache.Cache] keyed by prompt and
// generation options, and transient failures are retried with exponential
// backoff.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindweave/mindweave/pkg/cache"
	apperrors "github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/httputil"
	"github.com/mindweave/mindweave/pkg/mindmap"
)

// DefaultBaseURL is the production content service endpoint.
const DefaultBaseURL = "https://api.mindweave.dev"

// Generation limits sent to the service. The service may return less but
// should never return more; if it does anyway, validation still bounds the
// damage.
const (
	DefaultMaxDepth  = 4
	DefaultMaxBranch = 6
)

// Options configures a single map generation request.
type Options struct {
	MaxDepth  int  // maximum tree depth to request (default 4)
	MaxBranch int  // maximum children per topic to request (default 6)
	Refresh   bool // bypass the response cache
}

func (o *Options) setDefaults() {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxBranch == 0 {
		o.MaxBranch = DefaultMaxBranch
	}
}

// Client talks to the content service. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   cache.Cache
	keyer   cache.Keyer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the service endpoint (used by tests and
// self-hosted deployments).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a content service client. Pass a nil cache to disable
// response caching.
func NewClient(apiKey string, c cache.Cache, opts ...ClientOption) *Client {
	client := &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
	}
	if client.cache == nil {
		client.cache = cache.NewNullCache()
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// generateRequest is the wire format of a generation request.
type generateRequest struct {
	Topic     string `json:"topic"`
	MaxDepth  int    `json:"max_depth"`
	MaxBranch int    `json:"max_branch"`
}

// GenerateMap asks the service for a topic tree and validates it before
// returning. The raw (already validated) response is cached; a cached tree
// is re-validated on the way out so a corrupted cache entry cannot smuggle
// a bad tree past the boundary.
func (c *Client) GenerateMap(ctx context.Context, topic string, opts Options) (*mindmap.Topic, error) {
	if err := apperrors.ValidateTopicPrompt(topic); err != nil {
		return nil, err
	}
	opts.setDefaults()

	key := c.keyer.MapKey(topic, cache.MapKeyOpts{MaxDepth: opts.MaxDepth, MaxBranch: opts.MaxBranch})

	if !opts.Refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if root, err := mindmap.Read(bytes.NewReader(data)); err == nil {
				return root, nil
			}
			// Corrupt entry: drop it and fetch fresh.
			_ = c.cache.Delete(ctx, key)
		}
	}

	body, err := c.post(ctx, "/v1/mindmaps", generateRequest{
		Topic:     topic,
		MaxDepth:  opts.MaxDepth,
		MaxBranch: opts.MaxBranch,
	})
	if err != nil {
		return nil, err
	}

	root, err := mindmap.Read(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err,
			"content service returned a malformed tree for %q", topic)
	}

	_ = c.cache.Set(ctx, key, body, cache.TTLMap)
	return root, nil
}

// post sends a JSON request with retry and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var respBody []byte
	err = httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{
				Err: apperrors.Wrap(apperrors.ErrCodeNetwork, err, "content service unreachable"),
			}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{
				Err: apperrors.Wrap(apperrors.ErrCodeNetwork, err, "read response"),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "content service endpoint not found")
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.ErrCodeRateLimited, "content service rate limit exceeded")
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "content service rejected credentials")
	case code >= 500:
		return &httputil.RetryableError{
			Err: apperrors.New(apperrors.ErrCodeNetwork, "content service error: status %d", code),
		}
	default:
		return apperrors.New(apperrors.ErrCodeNetwork, "content service error: status %d", code)
	}
}
