// Package ui implements an interactive terminal interface for a sync run using bubbletea's Elm architecture.
//
// The TUI moves through four views:
//  1. [CollectionListView] : Pick the source collection, skipped when one was given on the command line
//  2. [ConfirmView] : Confirm the source and destination
//  3. [SyncView] : Spinner and progress bar fed by the engine's progress channel
//  4. [ResultView] : The three counts and a browsable list of per-track outcomes
//
// Progress updates flow through a channel from [tasks.PlaylistEngine]; the engine never blocks on it.
// The final result travels on a separate channel so the model is only mutated inside Update.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, r, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
