// Package layout computes non-overlapping 2D positions for a mind map tree.
//
// The engine is a tidy-tree layout in the Reingold–Tilford family, using the
// "reserve measured subtree width" variant: every subtree claims its full
// horizontal footprint before siblings are placed, which makes sibling
// overlap impossible regardless of label length variance. Contour threading
// (minimum total width for asymmetric trees) is not implemented; asymmetric
// trees may render wider than strictly necessary.
//
// # Passes
//
// Layout runs as a fixed sequence over an arena of nodes:
//
//  1. Construction: the topic tree is copied pre-order into a flat arena.
//     Parents are stored as indices, which keeps the structure free of
//     pointer aliasing while preserving O(1) parent lookup. Each node gets
//     a box width derived from its label length, clamped to
//     [MinBoxWidth, MaxBoxWidth].
//  2. Bottom-up: post-order computation of each node's subtree width and of
//     each child's horizontal offset relative to its parent. Children are
//     placed side by side separated by SiblingGap and centered as a block
//     under the parent.
//  3. Top-down: pre-order resolution of absolute coordinates
//     (x = parent.x + relative offset, y = depth level) while accumulating
//     the global bounding box.
//  4. Normalization: a single shift moving every coordinate into positive
//     space with a uniform FramePad margin. This runs exactly once, after
//     both traversals; interleaving it would invalidate the running bounds.
//  5. Flattening: breadth-first emission so that parents always precede
//     their children in the result, which connector-drawing consumers
//     depend on.
//
// The engine is a pure function: no I/O, no shared state between calls, and
// every invocation allocates a fresh arena, so concurrent calls are safe.
//
// # Usage
//
//	result, err := layout.Build(root)
//	if err != nil {
//	    // INVALID_TREE: fall back to the "no diagram available" state
//	}
//	for _, n := range result.Nodes {
//	    draw(n.X-n.Width/2, n.Y, n.Width, n.Height, n.Label)
//	}
package layout
