package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRecordsLoaded MsgKind = iota
	MsgProgressUpdate
	MsgSyncComplete
	MsgVerifyComplete
)

type recordsLoaded struct {
	records []*models.SyncRecord
	err     error
}

type syncComplete struct {
	stats *models.RunStats
	err   error
}

type verifyComplete struct {
	result *tasks.VerifyResult
	err    error
}

// recordsLoadedMsg is the constructor for [MsgRecordsLoaded]
func recordsLoadedMsg(records []*models.SyncRecord, err error) Msg {
	return Msg{kind: MsgRecordsLoaded, data: recordsLoaded{records, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(stats *models.RunStats, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncComplete{stats, err}}
}

// verifyCompleteMsg is the constructor for [MsgVerifyComplete]
func verifyCompleteMsg(result *tasks.VerifyResult, err error) Msg {
	return Msg{kind: MsgVerifyComplete, data: verifyComplete{result, err}}
}
