// Package mindmap defines the topic tree that the rest of the system
// consumes: a rooted, ordered tree of labeled topics as produced by the
// generative content service.
//
// The tree arrives as untrusted JSON of the shape
//
//	{"topic": "Biology", "children": [{"topic": "Cells", "children": []}]}
//
// and must pass [Validate] before it reaches the layout engine. Validation
// guards against the failure modes of a generative producer: missing roots,
// shared subtrees, self-references, and runaway depth.
package mindmap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mindweave/mindweave/pkg/errors"
)

// DefaultMaxDepth bounds tree depth during validation. The content service
// is configured to emit around five levels; anything past this limit is
// treated as a malformed (likely cyclic) tree rather than a big one.
const DefaultMaxDepth = 100

// Topic is a single node in the mind map tree. Children are ordered and
// exclusively owned by their parent; a Topic must never appear in two
// children lists.
type Topic struct {
	Label    string   `json:"topic" bson:"topic"`
	Children []*Topic `json:"children,omitempty" bson:"children,omitempty"`
}

// Count returns the total number of topics in the tree rooted at t.
func (t *Topic) Count() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}

// Depth returns the number of levels in the tree rooted at t.
// A single topic has depth 1.
func (t *Topic) Depth() int {
	if t == nil {
		return 0
	}
	deepest := 0
	for _, c := range t.Children {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Walk visits every topic in pre-order, passing the topic and its level
// (root = 0) to fn. Exporters rely on this ordering being stable.
func (t *Topic) Walk(fn func(topic *Topic, level int)) {
	if t == nil {
		return
	}
	t.walk(0, fn)
}

func (t *Topic) walk(level int, fn func(*Topic, int)) {
	fn(t, level)
	for _, c := range t.Children {
		c.walk(level+1, fn)
	}
}

// Validate checks that the tree rooted at root is well-formed: non-nil,
// acyclic, with no topic shared between two parents, and no deeper than
// maxDepth levels. Pass 0 for maxDepth to use [DefaultMaxDepth].
//
// Empty labels are NOT an error here: the layout engine treats them as
// zero-length and falls back to its minimum box width.
func Validate(root *Topic, maxDepth int) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "mind map has no root topic")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	seen := make(map[*Topic]struct{})
	return check(root, 0, maxDepth, seen)
}

func check(t *Topic, depth, maxDepth int, seen map[*Topic]struct{}) error {
	if depth >= maxDepth {
		return errors.New(errors.ErrCodeInvalidTree,
			"topic tree exceeds maximum depth %d (possible cycle)", maxDepth)
	}
	if _, dup := seen[t]; dup {
		return errors.New(errors.ErrCodeInvalidTree,
			"topic %q appears in more than one place", t.Label)
	}
	seen[t] = struct{}{}

	for _, c := range t.Children {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidTree,
				"topic %q has a nil child", t.Label)
		}
		if c == t {
			return errors.New(errors.ErrCodeInvalidTree,
				"topic %q references itself", t.Label)
		}
		if err := check(c, depth+1, maxDepth, seen); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a topic tree from r and validates it.
func Read(r io.Reader) (*Topic, error) {
	var root Topic
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode mind map")
	}
	if err := Validate(&root, 0); err != nil {
		return nil, err
	}
	return &root, nil
}

// Write encodes the tree as indented JSON.
func Write(root *Topic, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode mind map: %w", err)
	}
	return nil
}

// Marshal encodes the tree as compact JSON. Encoding is deterministic, so
// the bytes are suitable for hashing.
func Marshal(root *Topic) ([]byte, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode mind map: %w", err)
	}
	return data, nil
}

// ReadFile reads and validates a topic tree from a JSON file.
func ReadFile(path string) (*Topic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes a topic tree to a JSON file at path.
func WriteFile(root *Topic, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(root, f)
}
