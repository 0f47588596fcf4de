package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/tui/components"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldPayment = iota
	settingsFieldDuration
	settingsFieldCurrency
	settingsFieldTheme
	settingsFieldTitle
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" after a config write
	saveErr error // non-nil if the last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a App) updateSettingsKey(key string) (m tea.Model, cmd tea.Cmd, ok bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter":
		m, cmd = a.settingsStartEdit()
		return m, cmd, true
	}
	return a, nil, false
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	budget := a.snap.Budget

	switch a.settings.cursor {
	case settingsFieldPayment:
		ti.Placeholder = "5000 (per month)"
		if budget.MonthlyPayment > 0 {
			ti.SetValue(strconv.FormatFloat(budget.MonthlyPayment, 'f', -1, 64))
		}
	case settingsFieldDuration:
		ti.Placeholder = "months, 1 to 1200"
		ti.SetValue(strconv.Itoa(budget.DurationMonths))
	case settingsFieldCurrency:
		ti.Placeholder = cli.DefaultCurrency
		ti.SetValue(a.currency())
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldTitle:
		ti.Placeholder = config.DefaultConfig().Report.Title
		ti.SetValue(a.cfg.Report.Title)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		return a.settingsSave()
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave stores the edited value. Budget values go through the
// expense service into the store; presentation values go to the config file.
func (a App) settingsSave() (tea.Model, tea.Cmd) {
	val := strings.TrimSpace(a.settings.input.Value())
	svc, cur := a.svc, a.currency()

	switch a.settings.cursor {
	case settingsFieldPayment:
		return a, mutateCmd(func(ctx context.Context) (string, error) {
			v, err := svc.SetMonthlyPayment(ctx, val)
			if err != nil {
				return "", err
			}
			return "Monthly payment set to " + cli.FormatMoney(cur, v), nil
		})
	case settingsFieldDuration:
		return a, mutateCmd(func(ctx context.Context) (string, error) {
			n, err := svc.SetDuration(ctx, val)
			if err != nil {
				return "", err
			}
			return "Duration set to " + cli.FormatMonths(n), nil
		})
	}

	cfg := a.cfg
	switch a.settings.cursor {
	case settingsFieldCurrency:
		if val == "" {
			a.settings.saveErr = errCurrencyEmpty
			return a, nil
		}
		cfg.General.Currency = val
	case settingsFieldTheme:
		if !theme.IsTheme(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return a, nil
		}
		cfg.Appearance.Theme = val
	case settingsFieldTitle:
		if val == "" {
			val = config.DefaultConfig().Report.Title
		}
		cfg.Report.Title = val
	}

	if err := a.saveConfig(cfg); err != nil {
		a.settings.saveErr = err
		return a, nil
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saved = true
	return a, nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	budget := a.snap.Budget

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	payment := "(not set)"
	if budget.MonthlyPayment > 0 {
		payment = cli.FormatMoney(a.currency(), budget.MonthlyPayment)
	}

	fields := []struct {
		label string
		value string
	}{
		{"Monthly Payment", payment},
		{"Project Duration", cli.FormatMonths(budget.DurationMonths)},
		{"Currency", a.currency()},
		{"Theme", a.cfg.Appearance.Theme},
		{"Report Title", a.cfg.Report.Title},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(a.dbPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Expenses stored: ") + valueStyle.Render(cli.FormatNumber(int64(len(a.snap.Expenses)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(a.loadTime.Round(time.Millisecond).String()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
