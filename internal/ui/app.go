package ui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/notify"
	"github.com/khidmat-portal/khidmat/internal/portal"
	"github.com/khidmat-portal/khidmat/internal/prefs"
)

// screen is the main content area.
type screen int

const (
	screenList screen = iota
	screenActivity
	screenRoster
)

const (
	clockTick      = time.Second
	prefsSaveDelay = 300 * time.Millisecond
)

// pageSizes is the cycle for +/-.
var pageSizes = []int{10, 25, 50, 100}

// Options configures the UI.
type Options struct {
	Context context.Context
	// Controller builds the list controller for an entity.
	Controller func(catalog.Entity) *listing.Controller
	Gate       access.Gate
	Session    *access.Provider
	Notices    *notify.Board
	Sink       notify.Sink
	Logger     *zerolog.Logger
	LogPath    string

	Prefs     prefs.Prefs
	PrefsPath string // empty uses ~/.config/khidmat/prefs.toml

	InitialEntity  string
	SearchDebounce time.Duration
	RefreshEvery   time.Duration // zero disables auto-refresh
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx           context.Context
	newController func(catalog.Entity) *listing.Controller
	gate          access.Gate
	session       *access.Provider
	notices       *notify.Board
	sink          notify.Sink
	log           zerolog.Logger
	logPath       string
	prefs         prefs.Prefs
	prefsPath     string
	debounce      time.Duration
	refreshEvery  time.Duration

	keys     keyMap
	theme    Theme
	width    int
	height   int
	ready    bool
	screen   screen
	showHelp bool
	modal    Modal

	ctrl       *listing.Controller
	view       listing.View
	cursor     int
	refreshGen uint64

	search    textinput.Model
	searching bool
	settler   *listing.Settler[string]

	prefsWriter *listing.Debouncer[prefs.Prefs]

	spinner   spinner.Model
	paginator paginator.Model
	activity  activityState

	pending []tea.Cmd
}

// New creates the model and starts loading the initial list.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	sink := opts.Sink
	if sink == nil {
		if opts.Notices != nil {
			sink = opts.Notices
		} else {
			sink = notify.Discard
		}
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = listing.DefaultDebounce
	}

	theme := GetTheme(opts.Prefs.Theme)
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning))
	pager := paginator.New(paginator.WithPerPage(1))
	pager.Type = paginator.Dots
	pager.ActiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent)).Render("•")
	pager.InactiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Faint)).Render("•")

	m := Model{
		ctx:           ctx,
		newController: opts.Controller,
		gate:          opts.Gate,
		session:       opts.Session,
		notices:       opts.Notices,
		sink:          sink,
		log:           logger.With().Str("component", "ui").Logger(),
		logPath:       opts.LogPath,
		prefs:         opts.Prefs,
		prefsPath:     prefsPath,
		debounce:      debounce,
		refreshEvery:  opts.RefreshEvery,
		keys:          DefaultKeyMap(),
		theme:         theme,
		search:        newSearchInput(),
		settler:       &listing.Settler[string]{},
		spinner:       spin,
		paginator:     pager,
		activity:      activityState{minLevel: zerolog.InfoLevel},
	}
	m.prefsWriter = listing.NewDebouncer(prefsSaveDelay, m.writePrefs)
	m.pending = append(m.pending, m.openEntity(m.initialEntity(opts.InitialEntity)))
	return m
}

// initialEntity resolves the starting list: the requested one, else the
// first list the session may view, else the first list.
func (m Model) initialEntity(name string) catalog.Entity {
	if name != "" {
		if e, err := catalog.Lookup(name); err == nil {
			return e
		}
	}
	all := catalog.All()
	for _, e := range all {
		if m.gate.Allowed(e.Name, access.ActionView) {
			return e
		}
	}
	return all[0]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{tickCmd()}, m.pending...)
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.syncView()
		cmds := []tea.Cmd{tickCmd()}
		if m.screen == screenActivity {
			cmds = append(cmds, loadActivityCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.view.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		refetch := m.ctrl.Complete(msg.req, msg.result, msg.err)
		m.syncView()
		if refetch {
			cmd := m.fetch()
			return m, cmd
		}
		return m, nil

	case refreshTickMsg:
		if msg.gen != m.refreshGen {
			return m, nil
		}
		var cmds []tea.Cmd
		if !m.view.Loading() && m.modal == nil && !m.searching {
			cmds = append(cmds, m.fetch())
		}
		cmds = append(cmds, m.scheduleRefresh())
		return m, tea.Batch(cmds...)

	case searchSettleMsg:
		return m.settleSearch(msg.gen)

	case activityMsg:
		m.activity.entries = msg.entries
		m.activity.err = msg.err
		return m, nil

	case pickEntityMsg:
		cmd := m.openEntity(msg.entity)
		return m, cmd

	case applyFiltersMsg:
		changed := false
		for _, k := range slices.Sorted(maps.Keys(msg.values)) {
			if m.ctrl.SetFilter(k, msg.values[k]) {
				changed = true
			}
		}
		m.cursor = 0
		m.syncView()
		if changed {
			cmd := m.fetch()
			return m, cmd
		}
		return m, nil

	case confirmDeleteMsg:
		if msg.entity != m.ctrl.Entity().Name {
			return m, nil
		}
		return m, m.mutateCmd(access.ActionDelete, msg.id, nil)

	case submitFormMsg:
		if msg.entity != m.ctrl.Entity().Name {
			return m, nil
		}
		action := access.ActionEdit
		if msg.id == "" {
			action = access.ActionCreate
		}
		return m, m.mutateCmd(action, msg.id, msg.payload)

	case mutationMsg:
		return m.handleMutation(msg)
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	contentHeight := max(m.height-2, 3)
	var content string
	switch m.screen {
	case screenActivity:
		content = m.renderActivity(m.width, contentHeight)
	case screenRoster:
		content = m.renderRoster(m.width, contentHeight)
	default:
		content = m.renderList(m.width, contentHeight)
	}
	return m.renderHeader() + "\n" + m.renderCommandBar() + "\n" + content
}

// handleKey routes keys to the help overlay, an open modal, the search box
// or the current screen, in that order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Stop()
		m.flushPrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Entities):
		m.modal = newPickerModal(m.gate, m.ctrl.Entity().Name)
		return m, nil
	case key.Matches(msg, m.keys.Activity):
		if m.screen == screenActivity {
			m.screen = screenList
			return m, nil
		}
		m.screen = screenActivity
		m.activity.offset = 0
		return m, loadActivityCmd(m.logPath)
	case key.Matches(msg, m.keys.Escape):
		m.screen = screenList
		return m, nil
	}

	if m.screen == screenActivity {
		return m.handleActivityKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := max(m.height-4, 1)
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.activity.cycleLevel()
		m.activity.offset = 0
	case key.Matches(msg, m.keys.Up):
		m.activity.scroll(1, visible)
	case key.Matches(msg, m.keys.Down):
		m.activity.scroll(-1, visible)
	case key.Matches(msg, m.keys.Top):
		m.activity.scroll(len(m.activity.entries), visible)
	case key.Matches(msg, m.keys.Bottom):
		m.activity.offset = 0
	case key.Matches(msg, m.keys.Refresh):
		return m, loadActivityCmd(m.logPath)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entity := m.ctrl.Entity()
	rows := len(m.view.Rows)

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cursor = max(min(m.cursor+1, rows-1), 0)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(rows-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		return m.afterQueryChange(m.ctrl.NextPage())
	case key.Matches(msg, m.keys.PrevPage):
		return m.afterQueryChange(m.ctrl.PrevPage())
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.fetch()
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		cmd := m.startSearch()
		return m, cmd
	case key.Matches(msg, m.keys.Filters):
		m.modal = newFiltersModal(entity, m.ctrl.Query().Filters)
		return m, nil
	case key.Matches(msg, m.keys.ClearFilters):
		return m.afterQueryChange(m.ctrl.ClearFilters())
	case key.Matches(msg, m.keys.Sort):
		return m.afterQueryChange(m.ctrl.SetSort(nextSortField(entity, m.ctrl.Query().SortField), listing.Asc))
	case key.Matches(msg, m.keys.SortDir):
		return m.afterQueryChange(m.ctrl.ToggleSort(m.ctrl.Query().SortField))
	case key.Matches(msg, m.keys.Bigger), key.Matches(msg, m.keys.Smaller):
		step := 1
		if key.Matches(msg, m.keys.Smaller) {
			step = -1
		}
		size := nextPageSize(m.ctrl.Query().PageSize, step)
		m.prefs = m.prefs.WithPageSize(entity.Name, size)
		m.savePrefs()
		return m.afterQueryChange(m.ctrl.SetPageSize(size))

	case key.Matches(msg, m.keys.Roster):
		if entity.Name != rosterEntity {
			return m, nil
		}
		if m.screen == screenRoster {
			m.screen = screenList
		} else {
			m.screen = screenRoster
		}
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if rec, ok := m.selected(); ok {
			m.modal = newDetailModal(fmt.Sprintf("%s #%s", entity.Noun, rec.ID()), rec)
		}
		return m, nil

	case key.Matches(msg, m.keys.Create):
		if !m.permit(access.ActionCreate, "create") {
			return m, nil
		}
		m.modal = newFormModal(entity, "", nil)
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		rec, ok := m.selected()
		if !ok || !m.permit(access.ActionEdit, "edit") {
			return m, nil
		}
		m.modal = newFormModal(entity, rec.ID(), rec)
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		rec, ok := m.selected()
		if !ok || !m.permit(access.ActionDelete, "delete") {
			return m, nil
		}
		m.modal = newConfirmModal(entity.Name, entity.Noun, rec.ID(), recordLabel(rec, entity))
		return m, nil
	}
	return m, nil
}

// permit checks the gate at the moment an action is invoked. A denied
// action is explained and never reaches the network.
func (m *Model) permit(action access.Action, verb string) bool {
	entity := m.ctrl.Entity()
	if err := m.gate.Guard(entity.Name, action); err != nil {
		m.log.Info().Str("entity", entity.Name).Str("action", action.String()).Msg("action hidden by permissions")
		notify.Error(m.sink, "%s", listing.Describe(err, verb, "this "+entity.Noun))
		return false
	}
	return true
}

// afterQueryChange refreshes the view after a controller mutator and
// fetches when the mutator asked for it.
func (m Model) afterQueryChange(needsFetch bool) (tea.Model, tea.Cmd) {
	m.cursor = 0
	m.syncView()
	if !needsFetch {
		return m, nil
	}
	cmd := m.fetch()
	return m, cmd
}

func (m *Model) selected() (portal.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Rows) {
		return nil, false
	}
	return m.view.Rows[m.cursor], true
}

// openEntity switches the active list, stopping the previous controller so
// its in-flight request is cancelled and its response ignored.
func (m *Model) openEntity(e catalog.Entity) tea.Cmd {
	if m.ctrl != nil {
		m.ctrl.Stop()
	}
	m.ctrl = m.newController(e)
	m.cursor = 0
	m.screen = screenList
	m.searching = false
	m.search.SetValue("")
	m.settler.Reset()
	m.refreshGen++

	if m.prefs.LastView != e.Name {
		m.prefs.LastView = e.Name
		m.savePrefs()
	}
	return tea.Batch(m.fetch(), m.scheduleRefresh())
}

// fetch begins a request for the current query and returns the command
// that performs it off the update loop.
func (m *Model) fetch() tea.Cmd {
	ctrl := m.ctrl
	req := ctrl.Begin(m.ctx)
	m.syncView()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := ctrl.Load(req)
		return listLoadedMsg{ctrl: ctrl, req: req, result: r, err: err}
	})
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	gen := m.refreshGen
	return tea.Tick(m.ctrl.NextRefresh(m.refreshEvery), func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}

// syncView re-reads the controller. Permissions are re-evaluated here, so a
// session change shows up on the next clock tick.
func (m *Model) syncView() {
	m.view = m.ctrl.View()
	if m.cursor >= len(m.view.Rows) {
		m.cursor = max(len(m.view.Rows)-1, 0)
	}
}

func (m Model) mutateCmd(action access.Action, id string, payload map[string]any) tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		var (
			out listing.Outcome
			err error
		)
		switch action {
		case access.ActionDelete:
			out, err = ctrl.Delete(ctx, id)
		case access.ActionCreate:
			out, err = ctrl.Create(ctx, payload)
		default:
			out, err = ctrl.Update(ctx, id, payload)
		}
		return mutationMsg{ctrl: ctrl, action: action, outcome: out, err: err}
	}
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.ctrl != m.ctrl {
		return m, nil
	}
	if form, ok := m.modal.(*formModal); ok {
		if msg.err == nil {
			m.modal = nil
		} else {
			form.failed(listing.Describe(msg.err, msg.action.String(), m.ctrl.Entity().Noun))
		}
	}
	if !msg.outcome.Refresh {
		return m, nil
	}
	cmd := m.fetch()
	return m, cmd
}

// savePrefs queues a write of the current prefs. Bursts of changes, such
// as cycling through themes, end up as one write.
func (m *Model) savePrefs() {
	m.prefsWriter.Push(m.prefs)
}

// flushPrefs writes any queued prefs immediately.
func (m Model) flushPrefs() {
	m.prefsWriter.Flush()
}

func (m Model) writePrefs(p prefs.Prefs) {
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Msg("save prefs failed")
	}
}

func nextSortField(entity catalog.Entity, current string) string {
	fields := entity.SortFields()
	if len(fields) == 0 {
		return current
	}
	i := slices.Index(fields, current)
	return fields[(i+1)%len(fields)]
}

// nextPageSize steps to the neighbouring size in pageSizes, staying put at
// either end.
func nextPageSize(current, step int) int {
	if step > 0 {
		for _, s := range pageSizes {
			if s > current {
				return s
			}
		}
		return current
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < current {
			return pageSizes[i]
		}
	}
	return current
}

// recordLabel picks a human label for prompts from the first text column.
func recordLabel(rec portal.Record, entity catalog.Entity) string {
	for _, c := range entity.Columns {
		if c.Field == "id" {
			continue
		}
		if v := singleLine(rec.String(c.Field)); v != "" {
			return truncate(v, 32)
		}
	}
	return ""
}

// Messages

type tickMsg time.Time

type refreshTickMsg struct {
	gen uint64
}

type listLoadedMsg struct {
	ctrl   *listing.Controller
	req    listing.Request
	result listing.Result[portal.Record]
	err    error
}

type mutationMsg struct {
	ctrl    *listing.Controller
	action  access.Action
	outcome listing.Outcome
	err     error
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(clockTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.flushPrefs()
	m.prefsWriter.Close()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
