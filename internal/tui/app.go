// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/projection"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// Options configures the dashboard.
type Options struct {
	Store     *store.Store
	Config    config.Config
	Owner     string
	Currency  string
	Threshold decimal.Decimal
	// Today returns the current date. Defaults to the local calendar date.
	Today func() civil.Date
	Log   zerolog.Logger
}

// ReportMsg is sent when a refresh finishes.
type ReportMsg struct {
	Report  *pipeline.Report
	Entries []pipeline.Entry
	Points  []projection.Point
	Today   civil.Date
	Took    time.Duration
	Err     error
}

// SavedMsg is sent when a write to the store finishes.
type SavedMsg struct {
	Note string
	Err  error
}

type setupDoneMsg struct {
	cfg config.Config
	err error
}

type tickMsg struct{}

type formKind int

const (
	formNone formKind = iota
	formAdd
	formSetup
)

const (
	tabOverview = iota
	tabSchedule
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	opts  Options
	owner string
	cfg   config.Config

	// Data
	report      *pipeline.Report
	entries     []pipeline.Entry
	points      []projection.Point
	loaded      bool
	refreshing  bool
	err         error
	lastRefresh time.Time
	lastDay     civil.Date
	took        time.Duration
	flash       string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model
	schedule  table.Model

	// Forms
	form      *huh.Form
	formKind  formKind
	txVals    *TransactionValues
	setupVals *SetupValues
}

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	if opts.Today == nil {
		opts.Today = func() civil.Date { return civil.DateOf(time.Now()) }
	}
	if opts.Currency == "" {
		opts.Currency = "$"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		opts:     opts,
		owner:    opts.Owner,
		cfg:      opts.Config,
		spinner:  sp,
		schedule: newScheduleTable(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		loadCmd(a.opts.Store, a.owner, a.opts.Today()),
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeSchedule()
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, maxContentWidth)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || !a.loaded || a.showHelp {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		return a.updateKeys(msg)

	case ReportMsg:
		return a.applyReport(msg)

	case SavedMsg:
		if msg.Err != nil {
			a.flash = "Error: " + msg.Err.Error()
			return a, nil
		}
		a.flash = msg.Note
		a.refreshing = true
		return a, loadCmd(a.opts.Store, a.owner, a.opts.Today())

	case setupDoneMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.cfg = msg.cfg
		a.owner = msg.cfg.General.Owner
		a.opts.Currency = msg.cfg.Display.Currency
		a.err = nil
		a.refreshing = true
		return a, loadCmd(a.opts.Store, a.owner, a.opts.Today())

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		// Catch up when the calendar day rolls over while the dashboard is open.
		if a.loaded && !a.refreshing && a.form == nil && a.opts.Today() != a.lastDay {
			a.refreshing = true
			cmds = append(cmds, loadCmd(a.opts.Store, a.owner, a.opts.Today()), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks and the like) to the form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		a.flash = ""
		return a, tea.Batch(loadCmd(a.opts.Store, a.owner, a.opts.Today()), a.spinner.Tick)
	case "a":
		return a.openAddForm()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if a.activeTab == tabSchedule {
		return a.updateSchedule(msg)
	}
	return a, nil
}

func (a App) applyReport(msg ReportMsg) (tea.Model, tea.Cmd) {
	a.loaded = true
	a.refreshing = false
	a.lastRefresh = time.Now()

	if msg.Err != nil {
		if errors.Is(msg.Err, store.ErrNotSeeded) || errors.Is(msg.Err, store.ErrNotFound) {
			return a.openSetupForm()
		}
		a.err = msg.Err
		a.opts.Log.Error().Err(msg.Err).Str("owner", a.owner).Msg("refresh failed")
		return a, nil
	}

	a.err = nil
	a.report = msg.Report
	a.entries = msg.Entries
	a.points = msg.Points
	a.lastDay = msg.Today
	a.took = msg.Took
	a.schedule.SetRows(scheduleRows(a.entries, a.opts.Currency))
	return a, nil
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	a.txVals = &TransactionValues{}
	a.form = NewTransactionForm(a.txVals, a.opts.Today())
	a.formKind = formAdd
	return a, a.initForm()
}

func (a App) openSetupForm() (tea.Model, tea.Cmd) {
	a.setupVals = &SetupValues{
		Owner:    a.owner,
		Currency: a.opts.Currency,
		Theme:    theme.Active.Name,
	}
	a.form = NewSetupForm(a.setupVals)
	a.formKind = formSetup
	return a, a.initForm()
}

func (a *App) initForm() tea.Cmd {
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, maxContentWidth)).WithHeight(a.height)
	}
	return a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.form, a.formKind = nil, formNone
		switch kind {
		case formAdd:
			t, err := a.txVals.Transaction()
			if err != nil {
				a.flash = "Error: " + err.Error()
				return a, nil
			}
			return a, addCmd(a.opts.Store, a.owner, t)
		case formSetup:
			return a, setupCmd(a.opts.Store, a.cfg, *a.setupVals, a.opts.Today())
		}
		return a, nil
	case huh.StateAborted:
		if a.formKind == formSetup {
			return a, tea.Quit
		}
		a.form, a.formKind = nil, formNone
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n", a.width, minTerminalWidth)
	}
	if a.form != nil {
		return a.form.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 4).
		Render(
			lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ runway") + "\n\n" +
				a.spinner.View() + lipgloss.NewStyle().Foreground(t.TextMuted).Render(" Bringing the books up to date..."),
		)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	bindings := []struct{ key, desc string }{
		{"o s", "Overview / Schedule"},
		{"← →", "Previous / next tab"},
		{"j k", "Move in the schedule"},
		{"a", "Add a scheduled transaction"},
		{"d", "Delete the selected transaction"},
		{"r", "Refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-6s", bind.key)), descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("Press any key to close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	pill := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(a.owner)
	header := components.RenderTabBar(a.activeTab)
	header += strings.Repeat(" ", max(a.width-lipgloss.Width(header)-lipgloss.Width(pill)-1, 1)) + pill

	info := ""
	switch {
	case a.refreshing:
		info = a.spinner.View() + " refreshing"
	case a.flash != "":
		info = a.flash
	case !a.lastRefresh.IsZero():
		info = fmt.Sprintf("as of %s · %s", a.lastDay, a.took.Round(time.Millisecond))
	}
	statusBar := components.RenderStatusBar(a.width, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.err != nil:
		content = components.ContentCard("Refresh failed",
			lipgloss.NewStyle().Foreground(t.Expense).Render(a.err.Error()), cw)
	case a.activeTab == tabSchedule:
		content = a.renderScheduleTab(cw)
	default:
		content = a.renderOverviewTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.PlaceHorizontal(a.width, lipgloss.Center, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}

func tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd refreshes owner, persisting the catch-up, and builds everything
// the tabs render.
func loadCmd(st *store.Store, owner string, today civil.Date) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rep, err := pipeline.RefreshOwner(ctx, st, owner, today)
		if err != nil {
			return ReportMsg{Err: err}
		}
		entries, err := pipeline.Upcoming(rep.Transactions, today)
		if err != nil {
			return ReportMsg{Err: err}
		}
		points, err := projection.Series(rep.Funds.Spending, rep.Funds.Savings, rep.Transactions, today, rep.Projection.Horizon)
		if err != nil {
			return ReportMsg{Err: err}
		}
		return ReportMsg{
			Report:  rep,
			Entries: entries,
			Points:  points,
			Today:   today,
			Took:    time.Since(start),
		}
	}
}

// setupCmd creates the owner if needed, seeds the starting balance and
// saves the answers to the config file.
func setupCmd(st *store.Store, cfg config.Config, vals SetupValues, today civil.Date) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		owner := strings.TrimSpace(vals.Owner)
		amount, err := vals.StartingAmount()
		if err != nil {
			return setupDoneMsg{err: err}
		}
		if err := st.CreateOwner(ctx, owner, today); err != nil && !errors.Is(err, store.ErrExists) {
			return setupDoneMsg{err: err}
		}
		if _, err := st.Seed(ctx, owner, amount); err != nil {
			return setupDoneMsg{err: err}
		}

		cfg.General.Owner = owner
		if c := strings.TrimSpace(vals.Currency); c != "" {
			cfg.Display.Currency = c
		}
		if vals.Theme != "" {
			cfg.Display.Theme = vals.Theme
			theme.SetActive(vals.Theme)
		}
		if err := config.Save(cfg); err != nil {
			return setupDoneMsg{err: fmt.Errorf("saving config: %w", err)}
		}
		return setupDoneMsg{cfg: cfg}
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
