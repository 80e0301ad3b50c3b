// Package engine is the host-independent core of the authoring surface.
//
// It owns a doc.Tree and an explicit doc.Selection and exposes the editing
// operations a surface needs: formatting commands, links, images with
// drag-resize, toolbar format state and debounced change notification.
// Hosts (see package editor) translate input events into calls on Engine.
package engine
