package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CollectionListView ViewState = iota
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	engine         tasks.SyncEngine
	dir            services.Directory
	req            tasks.SyncRequest
	opts           tasks.SyncOptions
	width          int
	height         int
	collectionList list.Model
	outcomeList    list.Model
	spinner        spinner.Model
	bar            progress.Model
	progressChan   chan tasks.ProgressUpdate
	doneChan       chan syncCompleteMsg
	progress       tasks.ProgressUpdate
	result         *tasks.SyncResult
	err            error
	help           help.Model
	keys           keyMap
	onlyUnmatched  bool
}

// NewModel creates a TUI for req. When req has no source collection, dir lists the candidates to pick from.
func NewModel(ctx context.Context, engine tasks.SyncEngine, dir services.Directory, req tasks.SyncRequest, opts tasks.SyncOptions) *Model {
	view := ConfirmView
	if isZero(req.SourceCollection) && dir != nil {
		view = CollectionListView
	}
	return &Model{
		ctx:            ctx,
		view:           view,
		engine:         engine,
		dir:            dir,
		req:            req,
		opts:           opts,
		collectionList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		outcomeList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title)),
		bar:            progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:           help.New(),
		keys:           newKeyMap(),
	}
}

// Result returns the finished run, if any.
func (m *Model) Result() (*tasks.SyncResult, error) {
	return m.result, m.err
}

// Init fetches the source collections when the user has to pick one.
func (m *Model) Init() tea.Cmd {
	if m.view == CollectionListView {
		return m.fetchCollections()
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-4, 10), 60)
		m.collectionList.SetSize(msg.Width-4, msg.Height-8)
		m.outcomeList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CollectionListView:
			return m.handleCollectionListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case collectionsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.collections))
		for i, c := range msg.collections {
			items[i] = collectionItem{collection: c}
		}
		m.collectionList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.collectionList.Title = fmt.Sprintf("%s collections", m.req.Source.Name())
		if m.width > 0 {
			m.collectionList.SetSize(m.width-4, m.height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		m.buildOutcomeList()
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case CollectionListView:
		return m.renderCollectionList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleCollectionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.pick):
		if selected, ok := m.collectionList.SelectedItem().(collectionItem); ok {
			m.req.SourceCollection = selected.collection
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.collectionList, cmd = m.collectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		if m.dir != nil {
			m.view = CollectionListView
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.start):
		m.view = SyncView
		return m, tea.Batch(m.spinner.Tick, m.startSync())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.unmatched):
		m.onlyUnmatched = !m.onlyUnmatched
		m.buildOutcomeList()
		return m, nil
	case key.Matches(msg, m.keys.rerun):
		m.result = nil
		m.onlyUnmatched = false
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		m.view = ConfirmView
		if m.dir != nil {
			m.view = CollectionListView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.outcomeList, cmd = m.outcomeList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CollectionListView:
		m.collectionList, cmd = m.collectionList.Update(msg)
	case ResultView:
		m.outcomeList, cmd = m.outcomeList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchCollections() tea.Cmd {
	return func() tea.Msg {
		collections, err := m.dir.Playlists(m.ctx)
		if err != nil {
			return collectionsFetchedMsg{err: err}
		}
		if lib, ok := m.dir.Library(); ok {
			collections = append([]models.Collection{lib}, collections...)
		}
		return collectionsFetchedMsg{collections: collections}
	}
}

// startSync runs the engine in the background. The result is sent on doneChan before progressChan closes.
func (m *Model) startSync() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	doneChan := make(chan syncCompleteMsg, 1)
	m.progressChan = progressChan
	m.doneChan = doneChan

	ctx, engine, req, opts := m.ctx, m.engine, m.req, m.opts
	opts.Progress = progressChan
	go func() {
		result, err := engine.Sync(ctx, req, opts)
		doneChan <- syncCompleteMsg{result: result, err: err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, doneChan := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}
		update, ok := <-progressChan
		if !ok {
			return <-doneChan
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) buildOutcomeList() {
	if m.result == nil {
		return
	}
	threshold := m.opts.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	outcomes := m.result.Outcomes
	title := "Tracks"
	if m.onlyUnmatched {
		outcomes = m.result.Unmatched()
		title = "Tracks without a match"
	}
	items := make([]list.Item, len(outcomes))
	for i, o := range outcomes {
		items[i] = outcomeItem{outcome: o, threshold: threshold}
	}
	m.outcomeList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.outcomeList.Title = title
	if m.width > 0 {
		m.outcomeList.SetSize(m.width-4, m.height-10)
	}
}

func (m *Model) renderCollectionList() string {
	return fmt.Sprintf("%s\n\n%s", m.collectionList.View(), m.help.ShortHelpView(m.keys.pickHelp()))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start sync?")
	info := fmt.Sprintf(
		"\nSource: %s on %s\nDestination: %s on %s\n",
		m.req.SourceCollection.Name, m.req.Source.Name(),
		m.req.DestCollection.Name, m.req.Dest.Name(),
	)
	if m.opts.DryRun {
		info += styles.warn.Render("Dry run: nothing will be written") + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(m.keys.confirmHelp()))
}

func (m *Model) renderSync() string {
	title := styles.title.Render(fmt.Sprintf("Syncing %s → %s", m.req.SourceCollection.Name, m.req.DestCollection.Name))
	status := fmt.Sprintf("%s %s", m.spinner.View(), phaseLabel(m.progress))

	var bar string
	if m.progress.Total > 0 && (m.progress.Phase == tasks.ResolveTracks || m.progress.Phase == tasks.WriteBatches) {
		bar = "\n" + m.bar.ViewAs(float64(m.progress.Step)/float64(m.progress.Total))
	}
	return fmt.Sprintf("%s\n%s%s\n%s", title, status, bar, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.resultHelp())
	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Sync failed: %v", m.err)
		}
		return styles.err.Render(msg+"\n\nPress r to retry, q to quit") + "\n"
	}

	var title string
	switch {
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("✗ Sync stopped: %v", m.err))
	case m.result.DryRun:
		title = styles.warn.Render("Dry run complete")
	default:
		title = styles.ok.Render("✓ Sync complete")
	}

	info := fmt.Sprintf("\nMatched: %d\nAlready present: %d\nAdded: %d", m.result.Matched, m.result.Existing, m.result.Added)
	if n := len(m.result.Unmatched()); n > 0 {
		info += "\n" + styles.warn.Render(fmt.Sprintf("No match for %d tracks", n))
	}
	if n := len(m.result.Skipped); n > 0 {
		info += "\n" + styles.warn.Render(fmt.Sprintf("Skipped %d unreadable items", n))
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, m.outcomeList.View(), helpView)
}

func phaseLabel(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.FetchDest:
		return "Fetching destination..."
	case tasks.FetchSource:
		return "Fetching source..."
	case tasks.ResolveTracks:
		return fmt.Sprintf("Searching tracks (%d/%d)", u.Step, u.Total)
	case tasks.Diff:
		return "Comparing..."
	case tasks.WriteBatches:
		return fmt.Sprintf("Writing batches (%d/%d)", u.Step, u.Total)
	case tasks.Done:
		return "Done"
	default:
		return "Processing..."
	}
}

func isZero(c models.Collection) bool {
	return c.ID == "" && c.Name == ""
}
