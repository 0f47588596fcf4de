package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"
	"github.com/theirongolddev/pbudget/internal/tui/components"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor int
	offset int // first visible row

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func (s *expensesState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

func (s *expensesState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name contains..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 30
	return ti
}

// visibleExpenses returns the expenses in store order, narrowed by the
// active search.
func (a App) visibleExpenses() []model.Expense {
	if a.expState.searchQuery == "" {
		return a.snap.Expenses
	}
	return pipeline.FilterByName(a.snap.Expenses, a.expState.searchQuery)
}

func (a App) selectedExpense() (model.Expense, bool) {
	visible := a.visibleExpenses()
	if a.expState.cursor < 0 || a.expState.cursor >= len(visible) {
		return model.Expense{}, false
	}
	return visible[a.expState.cursor], true
}

// updateExpensesKey handles expenses-tab bindings. ok is false when the key
// is not one of them and should fall through to the global bindings.
func (a App) updateExpensesKey(key string) (m tea.Model, cmd tea.Cmd, ok bool) {
	n := len(a.visibleExpenses())

	switch key {
	case "/":
		a.expState.searching = true
		a.expState.searchInput = newSearchInput()
		a.expState.searchInput.SetValue(a.expState.searchQuery)
		a.expState.searchInput.Focus()
		return a, a.expState.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.expState.searchQuery != "" {
			a.expState.searchQuery = ""
			a.expState.cursor = 0
			a.expState.offset = 0
		}
		return a, nil, true
	case "j", "down":
		a.expState.move(1, n)
		return a, nil, true
	case "k", "up":
		a.expState.move(-1, n)
		return a, nil, true
	case "g", "home":
		a.expState.cursor = 0
		a.expState.offset = 0
		return a, nil, true
	case "G", "end":
		a.expState.cursor = n - 1
		a.expState.clamp(n)
		return a, nil, true
	case "a":
		a.formVals = &formValues{
			category: string(model.Categories[0]),
			date:     expense.Today(a.now()),
		}
		m, cmd = a.openForm(formAdd, newExpenseForm("New expense", a.formVals))
		return m, cmd, true
	case "e", "enter":
		e, found := a.selectedExpense()
		if !found {
			return a, nil, true
		}
		d := expense.FromExpense(e)
		a.formVals = &formValues{
			targetID:   e.ID,
			name:       d.Name,
			category:   d.Category,
			amount:     d.Amount,
			date:       d.Date,
			attachment: d.AttachmentRef,
		}
		m, cmd = a.openForm(formEdit, newExpenseForm("Edit expense", a.formVals))
		return m, cmd, true
	case "d", "delete":
		e, found := a.selectedExpense()
		if !found {
			return a, nil, true
		}
		a.formVals = &formValues{targetID: e.ID}
		m, cmd = a.openForm(formDelete, newDeleteForm(e, a.currency(), a.formVals))
		return m, cmd, true
	}
	return a, nil, false
}

// updateExpensesSearch handles key events while the search input is active.
func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.expState.searchQuery = strings.TrimSpace(a.expState.searchInput.Value())
		a.expState.searching = false
		a.expState.cursor = 0
		a.expState.offset = 0
		return a, nil
	case "esc":
		a.expState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.expState.searchInput, cmd = a.expState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	es := a.expState
	expenses := a.visibleExpenses()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	const dateW, amountW, attachW = 10, 14, 2
	catW := 22
	if a.isCompactLayout() {
		catW = 14
	}
	nameW := innerW - dateW - catW - amountW - attachW - 4
	if nameW < 12 {
		nameW = 12
	}

	var body strings.Builder
	switch {
	case es.searching:
		body.WriteString(es.searchInput.View())
		body.WriteString("\n")
	case es.searchQuery != "":
		body.WriteString(mutedStyle.Render(fmt.Sprintf("Filter: %q  [Esc] clear", es.searchQuery)))
		body.WriteString("\n")
	}

	if len(expenses) == 0 {
		msg := "No expenses yet. Press [a] to add one."
		if es.searchQuery != "" {
			msg = "No expenses match the filter."
		}
		body.WriteString(mutedStyle.Render(msg))
		return components.ContentCard("Expenses", body.String(), cw)
	}

	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %*s %-*s",
		dateW, "Date", nameW, "Name", catW, "Category", amountW, "Amount", attachW, "")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	visible := h - 8 // card border, title, header, rule, total, hint
	if es.searching || es.searchQuery != "" {
		visible--
	}
	if visible < 3 {
		visible = 3
	}

	offset := es.offset
	if es.cursor < offset {
		offset = es.cursor
	}
	if es.cursor >= offset+visible {
		offset = es.cursor - visible + 1
	}
	end := min(offset+visible, len(expenses))

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	for i := offset; i < end; i++ {
		e := expenses[i]
		attach := ""
		if e.HasAttachment() {
			attach = "◆"
		}
		amount := cli.FormatMoney(a.currency(), e.Amount)

		if i == es.cursor {
			line := fmt.Sprintf("%-*s %-*s %-*s %*s %-*s",
				dateW, e.DateString(),
				nameW, cli.Truncate(e.Name, nameW),
				catW, cli.Truncate(string(e.Category), catW),
				amountW, amount,
				attachW, attach)
			body.WriteString(selectedStyle.Render(line))
		} else {
			catStyle := lipgloss.NewStyle().
				Foreground(t.CategoryColor(model.CategoryIndex(e.Category))).
				Background(t.Surface)
			body.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s ", dateW, e.DateString())))
			body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s ", nameW, cli.Truncate(e.Name, nameW))))
			body.WriteString(catStyle.Render(fmt.Sprintf("%-*s ", catW, cli.Truncate(string(e.Category), catW))))
			body.WriteString(amountStyle.Render(fmt.Sprintf("%*s ", amountW, amount)))
			body.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", attachW, attach)))
		}
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s",
		dateW+nameW+catW+2, fmt.Sprintf("Total (%d)", len(expenses)),
		amountW, cli.FormatMoney(a.currency(), total))))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[a] add  [e] edit  [d] delete  [/] search  [j/k] move"))

	title := fmt.Sprintf("Expenses %d/%d", es.cursor+1, len(expenses))
	return components.ContentCard(title, body.String(), cw)
}
