// Package editor provides a Bubble Tea rich-text authoring component backed
// by the engine package.
//
// The package is responsible for input handling, toolbar and dialog
// interaction, grapheme-aware rendering of the document, image upload
// scheduling, and delivering debounced change notifications to the host.
package editor
