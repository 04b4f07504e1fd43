// Package render composes one grid sample into one raster frame.
//
// A Renderer applies the run's color scale to the grid, centers the result on
// a square or vertical canvas at a deterministic scale, and blits the static
// overlays: caption, timestamp label, and the legend rendered once per run.
// Rendering is side-effect-free and reads only immutable state, so frames for
// different timestamps can be rendered concurrently.
package render
