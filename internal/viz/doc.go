// Package viz renders a deforming mesh in the terminal and lets the user
// drag its vertices.
//
// The viewer is a Bubble Tea program. The mesh wireframe is drawn onto a
// braille [Canvas] through a rotating [Camera]; the drag target follows the
// keyboard through a critically damped [Cursor] so grabbed vertices glide
// instead of jumping a whole step per key press.
//
// # Key Bindings
//
//	Space       - Pause/Resume
//	R           - Reset to the rest pose
//	Tab         - Select next vertex
//	Enter       - Grab / release the selected vertex
//	Arrows/WASD - Move the grab target in X/Y
//	PgUp/PgDn   - Move the grab target in Z
//	X/Y         - Rotate the camera
//	+/-         - Zoom
//	T           - Cycle color themes
//	?           - Help overlay
//	Q           - Quit
package viz
