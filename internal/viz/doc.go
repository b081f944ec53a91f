// Package viz provides the terminal live view of a propagation run.
//
// The view is a Bubble Tea program:
//
//   - [Model]: steps the engine on every tick and draws the medium and fronts
//   - [Canvas]: Braille-based pixel canvas with a per-cell shade layer
//   - Theme selection with 3 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial fronts
//	+/-   - Steps per tick
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
//
// # Recording
//
// G starts capturing full-resolution frames; pressing it again writes them
// to the configured GIF path.
package viz
