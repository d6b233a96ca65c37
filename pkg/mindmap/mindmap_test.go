package mindmap

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindweave/mindweave/pkg/errors"
)

func sampleTree() *Topic {
	return &Topic{
		Label: "Biology",
		Children: []*Topic{
			{Label: "Cells", Children: []*Topic{
				{Label: "Organelles"},
				{Label: "Membranes"},
			}},
			{Label: "Genetics"},
		},
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		root *Topic
		want int
	}{
		{"nil", nil, 0},
		{"single", &Topic{Label: "A"}, 1},
		{"sample", sampleTree(), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.root.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name string
		root *Topic
		want int
	}{
		{"nil", nil, 0},
		{"single", &Topic{Label: "A"}, 1},
		{"sample", sampleTree(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.root.Depth(); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWalkPreOrder(t *testing.T) {
	var labels []string
	var levels []int
	sampleTree().Walk(func(topic *Topic, level int) {
		labels = append(labels, topic.Label)
		levels = append(levels, level)
	})

	wantLabels := []string{"Biology", "Cells", "Organelles", "Membranes", "Genetics"}
	wantLevels := []int{0, 1, 2, 2, 1}

	if len(labels) != len(wantLabels) {
		t.Fatalf("visited %d topics, want %d", len(labels), len(wantLabels))
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], wantLabels[i])
		}
		if levels[i] != wantLevels[i] {
			t.Errorf("levels[%d] = %d, want %d", i, levels[i], wantLevels[i])
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid tree", func(t *testing.T) {
		if err := Validate(sampleTree(), 0); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("nil root", func(t *testing.T) {
		err := Validate(nil, 0)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Validate(nil) = %v, want INVALID_TREE", err)
		}
	})

	t.Run("self reference", func(t *testing.T) {
		root := &Topic{Label: "loop"}
		root.Children = []*Topic{root}
		err := Validate(root, 0)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Validate() = %v, want INVALID_TREE", err)
		}
	})

	t.Run("shared child", func(t *testing.T) {
		shared := &Topic{Label: "shared"}
		root := &Topic{
			Label:    "root",
			Children: []*Topic{{Label: "a", Children: []*Topic{shared}}, {Label: "b", Children: []*Topic{shared}}},
		}
		err := Validate(root, 0)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Validate() = %v, want INVALID_TREE", err)
		}
	})

	t.Run("deep cycle", func(t *testing.T) {
		a := &Topic{Label: "a"}
		b := &Topic{Label: "b"}
		a.Children = []*Topic{b}
		b.Children = []*Topic{a}
		err := Validate(a, 0)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Validate() = %v, want INVALID_TREE", err)
		}
	})

	t.Run("depth guard", func(t *testing.T) {
		// Chain of 10 exceeds a limit of 5.
		root := &Topic{Label: "0"}
		cur := root
		for i := 1; i < 10; i++ {
			next := &Topic{Label: "n"}
			cur.Children = []*Topic{next}
			cur = next
		}
		err := Validate(root, 5)
		if !errors.Is(err, errors.ErrCodeInvalidTree) {
			t.Errorf("Validate() = %v, want INVALID_TREE", err)
		}
		if err := Validate(root, 0); err != nil {
			t.Errorf("Validate() with default depth = %v, want nil", err)
		}
	})

	t.Run("empty labels are soft", func(t *testing.T) {
		root := &Topic{Label: "", Children: []*Topic{{Label: ""}}}
		if err := Validate(root, 0); err != nil {
			t.Errorf("Validate() = %v, want nil for empty labels", err)
		}
	})
}

func TestReadWrite(t *testing.T) {
	input := `{"topic":"Physics","children":[{"topic":"Optics"},{"topic":"Mechanics","children":[{"topic":"Kinematics"}]}]}`

	root, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if root.Label != "Physics" {
		t.Errorf("root = %q, want Physics", root.Label)
	}
	if root.Count() != 4 {
		t.Errorf("Count = %d, want 4", root.Count())
	}

	var buf bytes.Buffer
	if err := Write(root, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	again, err := Read(&buf)
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	if again.Count() != root.Count() || again.Depth() != root.Depth() {
		t.Error("round-trip changed tree shape")
	}
}

func TestReadInvalidJSON(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	if !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("Read = %v, want INVALID_TREE", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")

	if err := WriteFile(sampleTree(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	root, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if root.Count() != 5 {
		t.Errorf("Count = %d, want 5", root.Count())
	}
}
