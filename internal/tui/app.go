// Package tui provides the interactive Bubble Tea dashboard for pbudget.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"
	"github.com/theirongolddev/pbudget/internal/tui/components"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when a store snapshot has been read.
type DataLoadedMsg struct {
	Snapshot model.Snapshot
	Err      error
	LoadTime time.Duration
}

// MutationMsg reports the outcome of a store write started from the dashboard.
type MutationMsg struct {
	Status string
	Err    error
}

// Options configures a new App.
type Options struct {
	Service *expense.Service
	Config  config.Config
	// DBPath is shown in the setup wizard and the settings tab.
	DBPath string
	// NeedSetup opens the first-run wizard once data has loaded.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	svc *expense.Service

	// Data
	snap     model.Snapshot
	summary  model.Summary
	loaded   bool
	loadErr  error
	loadTime time.Duration

	cfg        config.Config
	dbPath     string
	saveConfig func(config.Config) error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	expState expensesState
	settings settingsState

	// Modal huh form (add, edit, delete, first-run setup)
	form      *huh.Form
	formKind  formKind
	formVals  *formValues
	needSetup bool

	status    string
	statusErr bool

	spinner spinner.Model
	now     func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	storeTimeout     = 10 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	theme.SetActive(opts.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		svc:        opts.Service,
		cfg:        opts.Config,
		dbPath:     opts.DBPath,
		saveConfig: config.Save,
		needSetup:  opts.NeedSetup,
		spinner:    sp,
		now:        time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.svc),
		a.spinner.Tick,
	)
}

func (a App) currency() string {
	return a.cfg.General.Currency
}

// recompute derives every view model from the current snapshot.
func (a *App) recompute() {
	a.summary = pipeline.Summarize(a.snap)
	a.expState.clamp(len(a.visibleExpenses()))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 80)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.snap = msg.Snapshot
			a.recompute()
		}

		if a.needSetup && a.form == nil && msg.Err == nil {
			a.formVals = setupValuesFrom(a.currency(), a.cfg.Appearance.Theme, a.snap.Budget)
			return a.openForm(formSetup, newSetupForm(a.dbPath, a.formVals))
		}
		return a, nil

	case MutationMsg:
		a.status = msg.Status
		a.statusErr = msg.Err != nil
		if msg.Err != nil {
			a.status = msg.Err.Error()
			return a, nil
		}
		return a, loadDataCmd(a.svc)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the active form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}

	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == components.TabExpenses && !a.expState.searching {
			a.expState.move(-1, len(a.visibleExpenses()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == components.TabExpenses && !a.expState.searching {
			a.expState.move(1, len(a.visibleExpenses()))
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// Modal forms intercept all keys
	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			return a, nil
		}
		return a.updateForm(msg)
	}

	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if a.activeTab == components.TabExpenses && a.expState.searching {
		return a.updateExpensesSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case components.TabExpenses:
		if m, cmd, ok := a.updateExpensesKey(key); ok {
			return m, cmd
		}
	case components.TabSettings:
		if m, cmd, ok := a.updateSettingsKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.status = ""
		return a, loadDataCmd(a.svc)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

// openForm activates a modal form sized to the terminal.
func (a App) openForm(kind formKind, form *huh.Form) (tea.Model, tea.Cmd) {
	if a.width > 0 {
		form = form.WithWidth(min(a.width, 80)).WithHeight(a.height)
	}
	a.form = form
	a.formKind = kind
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, vals := a.formKind, a.formVals
		a.closeForm()
		return a.submitForm(kind, vals)
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}

	return a, cmd
}

func (a *App) closeForm() {
	if a.formKind == formSetup {
		a.needSetup = false
	}
	a.form = nil
	a.formKind = formNone
	a.formVals = nil
}

func (a App) submitForm(kind formKind, vals *formValues) (tea.Model, tea.Cmd) {
	svc := a.svc
	switch kind {
	case formAdd:
		d := vals.draft()
		return a, mutateCmd(func(ctx context.Context) (string, error) {
			e, err := svc.Add(ctx, d)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added %q", e.Name), nil
		})
	case formEdit:
		id, d := vals.targetID, vals.draft()
		return a, mutateCmd(func(ctx context.Context) (string, error) {
			e, err := svc.Update(ctx, id, d)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Updated %q", e.Name), nil
		})
	case formDelete:
		if !vals.confirm {
			return a, nil
		}
		id := vals.targetID
		return a, mutateCmd(func(ctx context.Context) (string, error) {
			if err := svc.Delete(ctx, id); err != nil {
				return "", err
			}
			return "Deleted " + expense.ShortID(id), nil
		})
	case formSetup:
		return a.applySetup(vals)
	}
	return a, nil
}

// applySetup saves the wizard's presentation settings to the config file and
// its budget settings to the store.
func (a App) applySetup(vals *formValues) (tea.Model, tea.Cmd) {
	a.cfg.General.Currency = strings.TrimSpace(vals.currency)
	a.cfg.Appearance.Theme = vals.theme
	theme.SetActive(vals.theme)
	if err := a.saveConfig(a.cfg); err != nil {
		a.status = "Could not save config: " + err.Error()
		a.statusErr = true
	}

	svc := a.svc
	payment, duration := vals.payment, vals.duration
	return a, mutateCmd(func(ctx context.Context) (string, error) {
		if strings.TrimSpace(payment) != "" {
			if _, err := svc.SetMonthlyPayment(ctx, payment); err != nil {
				return "", err
			}
		}
		if _, err := svc.SetDuration(ctx, duration); err != nil {
			return "", err
		}
		return "Setup saved", nil
	})
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.form != nil {
		return a.viewForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  pbudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ pbudget"))
	b.WriteString(subtitleStyle.Render(" · Project Budget"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Reading " + a.dbPath))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o x b s", "Jump to tab"},
			{"← → Tab", "Previous / Next tab"},
			{"j k", "Move in lists"},
			{"g G", "First / Last expense"},
		}},
		{"Expenses", []struct{ key, desc string }{
			{"a", "Add expense"},
			{"e Enter", "Edit selected"},
			{"d", "Delete selected"},
			{"/", "Search by name"},
			{"Esc", "Clear search"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Reload from store"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	st := components.Status{
		Expenses:  len(a.snap.Expenses),
		HasBudget: a.summary.Totals.MonthlyPayment > 0,
		UsagePct:  a.summary.Totals.UsagePercent,
		Message:   a.status,
		IsError:   a.statusErr,
	}
	if a.loadErr != nil {
		st.Message = "Load failed: " + a.loadErr.Error()
		st.IsError = true
	}
	statusBar := components.RenderStatusBar(w, st)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case components.TabOverview:
		content = a.renderOverviewTab(cw)
	case components.TabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case components.TabBreakdown:
		content = a.renderBreakdownTab(cw)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd reads a fresh snapshot from the store.
func loadDataCmd(svc *expense.Service) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		snap, err := svc.Snapshot(ctx)
		return DataLoadedMsg{Snapshot: snap, Err: err, LoadTime: time.Since(start)}
	}
}

// mutateCmd runs a store write off the UI goroutine and reports its outcome.
func mutateCmd(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		status, err := fn(ctx)
		return MutationMsg{Status: status, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

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

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator column
	}
	return -1
}
