// Package viz is the terminal front end for an orbital world.
//
// Bodies are drawn on a braille [Canvas] (2x4 dots per cell) through a
// [Viewport] that maps world coordinates to dots. The live [Model] feeds
// mouse presses, drags and releases to the world as pointer commands and
// shows the selected body's diagnostics beside the canvas.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	A     - Add a planet
//	X     - Remove the selected planet
//	L     - Lock/unlock the selected planet
//	E     - Edit the selected body
//	Tab   - Cycle selection
//	T     - Cycle color themes
//	S     - Save an SVG snapshot
//	+/-   - Zoom
package viz
