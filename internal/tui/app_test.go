package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/store"
	"github.com/theirongolddev/pbudget/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) (App, *expense.Service) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := expense.NewService(st, expense.WithLogger(logging.Discard()))
	a := NewApp(Options{Service: svc, Config: config.DefaultConfig(), DBPath: st.Path()})
	a.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	a.saveConfig = func(config.Config) error { return nil }
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 45})
	return a, svc
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next
}

// reload runs the load command and feeds its message back, like the runtime.
func reload(t *testing.T, a App) App {
	t.Helper()
	return update(t, a, loadDataCmd(a.svc)())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func seed(t *testing.T, svc *expense.Service, drafts ...expense.Draft) {
	t.Helper()
	for _, d := range drafts {
		if _, err := svc.Add(context.Background(), d); err != nil {
			t.Fatalf("seed %q: %v", d.Name, err)
		}
	}
}

func TestLoadComputesSummary(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc,
		expense.Draft{Name: "Camera rental", Category: "Equipment Rental", Amount: "300", Date: "2025-02-03"},
		expense.Draft{Name: "Editor", Category: "Post-Production", Amount: "700", Date: "2025-03-01"},
	)
	if _, err := svc.SetMonthlyPayment(context.Background(), "2000"); err != nil {
		t.Fatal(err)
	}

	a = reload(t, a)
	if !a.loaded {
		t.Fatal("app not marked loaded")
	}
	if got := a.summary.Totals.TotalExpenses; got != 1000 {
		t.Errorf("TotalExpenses = %v, want 1000", got)
	}
	if got := a.summary.Totals.UsagePercent; got != 50 {
		t.Errorf("UsagePercent = %v, want 50", got)
	}
	if len(a.summary.ByMonth) != 2 {
		t.Errorf("ByMonth has %d entries, want 2", len(a.summary.ByMonth))
	}

	view := a.View()
	for _, want := range []string{"Monthly Expenses", "Budget Usage", "Spend by Month"} {
		if !strings.Contains(view, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestOverviewHidesUsageWithoutPayment(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc, expense.Draft{Name: "Flight", Category: "Travel", Amount: "450", Date: "2025-01-20"})
	a = reload(t, a)

	out := a.renderOverviewTab(a.contentWidth())
	if strings.Contains(out, "Budget Usage") {
		t.Error("usage card rendered with no monthly payment")
	}
	if strings.Contains(out, "Project (") {
		t.Error("project card rendered for a one-month project")
	}

	if _, err := svc.SetDuration(context.Background(), "6"); err != nil {
		t.Fatal(err)
	}
	a = reload(t, a)
	if out := a.renderOverviewTab(a.contentWidth()); !strings.Contains(out, "Project (6 months)") {
		t.Error("project card missing for a six-month project")
	}
}

func TestTabKeys(t *testing.T) {
	a, _ := newTestApp(t)
	a = reload(t, a)

	steps := []struct {
		key  string
		want int
	}{
		{"x", components.TabExpenses},
		{"b", components.TabBreakdown},
		{"s", components.TabSettings},
		{"o", components.TabOverview},
	}
	for _, s := range steps {
		a = update(t, a, key(s.key))
		if a.activeTab != s.want {
			t.Fatalf("after %q activeTab = %d, want %d", s.key, a.activeTab, s.want)
		}
	}

	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != components.TabSettings {
		t.Errorf("left from Overview -> %d, want wrap to Settings", a.activeTab)
	}
}

func TestAddFormSubmitsThroughService(t *testing.T) {
	a, _ := newTestApp(t)
	a = reload(t, a)

	a = update(t, a, key("x"))
	a = update(t, a, key("a"))
	if a.form == nil || a.formKind != formAdd {
		t.Fatalf("form = %v kind = %v, want add form", a.form, a.formKind)
	}
	if a.formVals.date != "2025-03-14" {
		t.Errorf("default date = %q, want today", a.formVals.date)
	}

	vals := a.formVals
	vals.name = "Voice-over"
	vals.category = string(model.CategoryTalentCrew)
	vals.amount = "250,50"

	a.closeForm()
	m, cmd := a.submitForm(formAdd, vals)
	a = m.(App)
	if cmd == nil {
		t.Fatal("submit returned no command")
	}

	msg, ok := cmd().(MutationMsg)
	if !ok || msg.Err != nil {
		t.Fatalf("mutation = %#v", msg)
	}
	a = update(t, a, msg)
	a = reload(t, a)

	if len(a.snap.Expenses) != 1 {
		t.Fatalf("store has %d expenses, want 1", len(a.snap.Expenses))
	}
	if got := a.snap.Expenses[0].Amount; got != 250.5 {
		t.Errorf("amount = %v, want 250.5", got)
	}
	if a.status == "" || a.statusErr {
		t.Errorf("status = %q err=%v, want success message", a.status, a.statusErr)
	}
}

func TestEditFormKeepsIdentity(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc, expense.Draft{Name: "Studio day", Category: "Location & Studio", Amount: "800", Date: "2025-02-10"})
	a = reload(t, a)
	id := a.snap.Expenses[0].ID

	a = update(t, a, key("x"))
	a = update(t, a, key("e"))
	if a.formKind != formEdit || a.formVals.targetID != id {
		t.Fatalf("edit form kind=%v target=%q", a.formKind, a.formVals.targetID)
	}
	if a.formVals.amount != "800" {
		t.Errorf("prefilled amount = %q, want 800", a.formVals.amount)
	}

	vals := a.formVals
	vals.amount = "950"
	a.closeForm()
	_, cmd := a.submitForm(formEdit, vals)
	if msg := cmd().(MutationMsg); msg.Err != nil {
		t.Fatalf("update: %v", msg.Err)
	}

	a = reload(t, a)
	if len(a.snap.Expenses) != 1 || a.snap.Expenses[0].ID != id || a.snap.Expenses[0].Amount != 950 {
		t.Errorf("after edit: %+v", a.snap.Expenses)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc, expense.Draft{Name: "Taxi", Category: "Travel", Amount: "40", Date: "2025-02-11"})
	a = reload(t, a)

	a = update(t, a, key("x"))
	a = update(t, a, key("d"))
	if a.formKind != formDelete {
		t.Fatalf("kind = %v, want delete", a.formKind)
	}

	vals := a.formVals
	a.closeForm()
	if _, cmd := a.submitForm(formDelete, vals); cmd != nil {
		t.Fatal("unconfirmed delete produced a command")
	}

	vals.confirm = true
	_, cmd := a.submitForm(formDelete, vals)
	if msg := cmd().(MutationMsg); msg.Err != nil {
		t.Fatalf("delete: %v", msg.Err)
	}
	a = reload(t, a)
	if len(a.snap.Expenses) != 0 {
		t.Errorf("expense still present after confirmed delete")
	}
}

func TestEscCancelsForm(t *testing.T) {
	a, _ := newTestApp(t)
	a = reload(t, a)
	a = update(t, a, key("x"))
	a = update(t, a, key("a"))
	a = update(t, a, key("esc"))
	if a.form != nil || a.formVals != nil {
		t.Error("esc left the form open")
	}
}

func TestSearchFiltersByName(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc,
		expense.Draft{Name: "Drone pilot", Category: "Talent & Crew", Amount: "600", Date: "2025-02-01"},
		expense.Draft{Name: "Hotel", Category: "Travel", Amount: "200", Date: "2025-02-02"},
		expense.Draft{Name: "Drone insurance", Category: "Other", Amount: "90", Date: "2025-02-03"},
	)
	a = reload(t, a)
	a = update(t, a, key("x"))

	a = update(t, a, key("/"))
	if !a.expState.searching {
		t.Fatal("search not started")
	}
	a.expState.searchInput.SetValue("drone")
	a = update(t, a, key("enter"))

	got := a.visibleExpenses()
	if len(got) != 2 || got[0].Name != "Drone pilot" || got[1].Name != "Drone insurance" {
		t.Fatalf("visible = %+v", got)
	}

	a = update(t, a, key("esc"))
	if len(a.visibleExpenses()) != 3 {
		t.Error("esc did not clear the filter")
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	a, svc := newTestApp(t)
	seed(t, svc,
		expense.Draft{Name: "A", Category: "Other", Amount: "1", Date: "2025-01-01"},
		expense.Draft{Name: "B", Category: "Other", Amount: "2", Date: "2025-01-02"},
	)
	a = reload(t, a)
	a = update(t, a, key("x"))

	for i := 0; i < 5; i++ {
		a = update(t, a, key("j"))
	}
	if a.expState.cursor != 1 {
		t.Errorf("cursor = %d, want 1", a.expState.cursor)
	}
	a = update(t, a, key("g"))
	if a.expState.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", a.expState.cursor)
	}
}

func TestSettingsSaveCurrency(t *testing.T) {
	a, _ := newTestApp(t)
	var saved config.Config
	a.saveConfig = func(c config.Config) error { saved = c; return nil }
	a = reload(t, a)

	a = update(t, a, key("s"))
	a.settings.cursor = settingsFieldCurrency
	a = update(t, a, key("enter"))
	if !a.settings.editing {
		t.Fatal("enter did not start editing")
	}
	a.settings.input.SetValue("€")
	a = update(t, a, key("enter"))

	if a.currency() != "€" || saved.General.Currency != "€" {
		t.Errorf("currency = %q saved = %q, want €", a.currency(), saved.General.Currency)
	}
	if !a.settings.saved {
		t.Error("saved flag not set")
	}
}

func TestSettingsSaveError(t *testing.T) {
	a, _ := newTestApp(t)
	a.saveConfig = func(config.Config) error { return errors.New("disk full") }
	a = reload(t, a)

	a = update(t, a, key("s"))
	a.settings.cursor = settingsFieldTheme
	a = update(t, a, key("enter"))
	a.settings.input.SetValue("tokyo-night")
	a = update(t, a, key("enter"))

	if a.settings.saveErr == nil {
		t.Fatal("save error not reported")
	}
	if a.cfg.Appearance.Theme == "tokyo-night" {
		t.Error("config changed despite failed save")
	}
}

func TestSettingsRejectsInvalidDuration(t *testing.T) {
	a, _ := newTestApp(t)
	a = reload(t, a)

	a = update(t, a, key("s"))
	a.settings.cursor = settingsFieldDuration
	a = update(t, a, key("enter"))
	a.settings.input.SetValue("0")
	m, cmd := a.Update(key("enter"))
	a = m.(App)

	msg := cmd().(MutationMsg)
	if !errors.Is(msg.Err, expense.ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", msg.Err)
	}
	a = update(t, a, msg)
	if !a.statusErr {
		t.Error("status bar not flagged as error")
	}
}

func TestChartMonthLabels(t *testing.T) {
	month := func(y int, m time.Month) model.MonthTotal {
		return model.MonthTotal{Month: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
	}
	got := chartMonthLabels([]model.MonthTotal{
		month(2024, time.November), month(2024, time.December), month(2025, time.January),
	})
	want := []string{"Nov'24", "Dec", "Jan'25"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, got[i], want[i])
		}
	}
}
