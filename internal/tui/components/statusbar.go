package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is the content of the bottom status bar.
type Status struct {
	Expenses  int
	HasBudget bool
	UsagePct  float64 // budget usage, 0-100 and above
	Message   string
	IsError   bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	if st.IsError {
		msgStyle = msgStyle.Foreground(t.Orange)
	}

	left := base.Render(" [?]help  [q]uit")
	if st.Message != "" {
		left += base.Render("  ") + msgStyle.Render(st.Message)
	}

	right := base.Render(fmt.Sprintf(" %d expenses ", st.Expenses))
	if st.HasBudget {
		right = CompactUsageBar("Budget", st.UsagePct/100, 22) + right
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + right
}
