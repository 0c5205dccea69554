// Package viz is the terminal front end of spikeviz, built on Bubble Tea.
//
//   - [Model]: live player stepping an engine and drawing its particles
//   - [LoadModel]: progress screen shown while a dataset loads
//   - [NewPresetMenu]: picker for the built-in presets
//   - [Canvas]: braille dot canvas with per-cell colors
//
// # Key Bindings
//
//	Space - Pause/Resume
//	P     - Play
//	S     - Stop and rewind
//	L     - Toggle loop
//	[ ]   - Seek one second back/forward
//	R     - Restart
//	T     - Cycle color themes
//	N     - Toggle neuron markers
//	B     - Toggle bounding box
//	x/y/z - Rotate camera (shift reverses)
//	+ -   - Zoom
//	?     - Show help overlay
//	Q     - Quit
package viz
