// Package viz renders fields for the terminal.
//
//   - [RenderSummary]: themed report panel for one field
//   - [Shade], [ShadeColor]: character maps banded by contour level
//   - [Outline]: Braille dot map of a threshold region
//   - [Theme]: colour schemes shared with the SVG and PNG exports
package viz
