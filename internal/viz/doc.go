// Package viz is a terminal dashboard for a running simulation, built on
// Bubble Tea.
//
// The dashboard advances the experiment a few iterations per frame and
// shows the density profile (1D) or a shaded density map of the middle
// slice (2D and 3D), the kinetic energy history and the loop status.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More/fewer iterations per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
