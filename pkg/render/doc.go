// Package render turns computed layouts into visual outputs.
//
// # Overview
//
// Two rendering paths are supported:
//
//   - Native SVG: RenderSVG draws the layout directly, box for box, with
//     cubic connector curves between parents and children. This is the
//     primary output and preserves the exact coordinates of the layout.
//   - Graphviz: ToDOT emits a DOT description of the topic tree, and
//     RenderDOTSVG/RenderDOTPNG rasterize it through graphviz. This path
//     trades layout fidelity for PNG output and interop with DOT tooling.
//
// Labels that do not fit their box are truncated with an ellipsis; the
// full text survives in the layout JSON.
package render
