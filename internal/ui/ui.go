package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RecordsView ViewState = iota
	SyncingView
	ResultView
)

// Syncer runs one synchronization pass.
type Syncer interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.RunStats, error)
}

// Verifier checks recorded events against the calendar.
type Verifier interface {
	Verify(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.VerifyOpts) (*tasks.VerifyResult, error)
}

// RecordLister lists ledger records.
type RecordLister interface {
	List() ([]*models.SyncRecord, error)
}

// Opts contains the dependencies of the dashboard. Verifier is optional.
type Opts struct {
	Syncer   Syncer
	Verifier Verifier
	Records  RecordLister
	Tag      string
}

// syncRun carries one background run; stats and err are written before progress is closed.
type syncRun struct {
	progress chan tasks.ProgressUpdate
	stats    *models.RunStats
	err      error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	syncer     Syncer
	verifier   Verifier
	records    RecordLister
	tag        string
	width      int
	height     int
	recordList list.Model
	count      int
	run        *syncRun
	progress   tasks.ProgressUpdate
	stats      *models.RunStats
	verify     *tasks.VerifyResult
	err        error // last sync or verify failure
	loadErr    error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Tasks tagged %q", opts.Tag)
	l.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       RecordsView,
		syncer:     opts.Syncer,
		verifier:   opts.Verifier,
		records:    opts.Records,
		tag:        opts.Tag,
		recordList: l,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading the ledger.
func (m *Model) Init() tea.Cmd {
	return m.loadRecords()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recordList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RecordsView:
			return m.handleRecordsKeys(msg)
		case SyncingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.recordList, cmd = m.recordList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRecordsLoaded:
		data := msg.data.(recordsLoaded)
		m.loadErr = data.err
		if data.err != nil {
			return m, nil
		}
		m.count = len(data.records)
		return m, m.recordList.SetItems(recordItems(data.records))

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncComplete)
		m.run = nil
		m.stats = data.stats
		m.verify = nil
		m.err = data.err
		m.view = ResultView
		return m, m.loadRecords()

	case MsgVerifyComplete:
		data := msg.data.(verifyComplete)
		m.stats = nil
		m.verify = data.result
		m.err = data.err
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RecordsView:
		return m.renderRecords()
	case SyncingView:
		return m.renderSyncing()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRecordsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recordList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recordList, cmd = m.recordList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.sync):
		m.view = SyncingView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	case key.Matches(msg, m.keys.verify):
		if m.verifier == nil {
			return m, nil
		}
		m.view = SyncingView
		m.progress = tasks.ProgressUpdate{Phase: tasks.VerifyRecords, Message: "Checking recorded events..."}
		return m, m.startVerify()
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadRecords()
	}

	var cmd tea.Cmd
	m.recordList, cmd = m.recordList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = RecordsView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.sync):
		m.view = SyncingView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) loadRecords() tea.Cmd {
	return func() tea.Msg {
		records, err := m.records.List()
		return recordsLoadedMsg(records, err)
	}
}

func (m *Model) startSync() tea.Cmd {
	run := &syncRun{progress: make(chan tasks.ProgressUpdate, 50)}
	m.run = run

	go func() {
		run.stats, run.err = m.syncer.Run(m.ctx, run.progress)
		close(run.progress)
	}()

	return m.waitForProgress()
}

func (m *Model) startVerify() tea.Cmd {
	return func() tea.Msg {
		result, err := m.verifier.Verify(m.ctx, nil, tasks.VerifyOpts{})
		return verifyCompleteMsg(result, err)
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		if run == nil {
			return nil
		}

		update, ok := <-run.progress
		if !ok {
			return syncCompleteMsg(run.stats, run.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRecords() string {
	if m.loadErr != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.loadErr))
	}

	summary := styles.help.Render(fmt.Sprintf("%d synced tasks", m.count))
	keys := []key.Binding{m.keys.sync, m.keys.refresh, m.keys.quit}
	if m.verifier != nil {
		keys = []key.Binding{m.keys.sync, m.keys.verify, m.keys.refresh, m.keys.quit}
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.recordList.View(), summary, m.help.ShortHelpView(keys))
}

func (m *Model) renderSyncing() string {
	title := styles.title.Render(fmt.Sprintf("Syncing tasks tagged %q", m.tag))

	var phase string
	switch m.progress.Phase {
	case tasks.FetchTasks:
		phase = "Fetching tasks from Asana..."
	case tasks.ProcessTask:
		phase = fmt.Sprintf("Processing tasks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.VerifyRecords:
		title = styles.title.Render("Verifying calendar events")
		phase = fmt.Sprintf("Checking events (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Complete:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.sync, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Failed: %v", m.err)), helpView)
	}

	if m.verify != nil {
		return fmt.Sprintf("%s\n\n%s", m.renderVerify(), helpView)
	}

	if m.stats == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Sync complete")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, styles.Stats(m.stats), helpView)
}

func (m *Model) renderVerify() string {
	var b strings.Builder

	if len(m.verify.Missing) == 0 && len(m.verify.Failed) == 0 {
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ All %d events present", m.verify.Present)))
		return b.String()
	}

	b.WriteString(styles.title.Render(fmt.Sprintf("Checked %d records, %d present", m.verify.Checked, m.verify.Present)))
	if len(m.verify.Missing) > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d events missing from the calendar:", len(m.verify.Missing))))
		for _, c := range m.verify.Missing {
			fmt.Fprintf(&b, "\n  • %s (%s)", c.Record.TaskName, c.Record.EventID)
		}
	}
	if len(m.verify.Failed) > 0 {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("%d lookups failed:", len(m.verify.Failed))))
		for _, c := range m.verify.Failed {
			fmt.Fprintf(&b, "\n  • %s: %v", c.Record.TaskName, c.Error)
		}
	}
	return b.String()
}
