// Package ui implements an interactive ledger dashboard using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [RecordsView] : Browse synced tasks and their calendar events
//  2. [SyncingView] : Follow a running sync through its progress updates
//  3. [ResultView] : Read the run counters or the verification report
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, s, v, r, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
