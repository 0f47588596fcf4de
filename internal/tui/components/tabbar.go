package components

import (
	"strings"

	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs, in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Expenses", Key: 'x', KeyPos: 1},
	{Name: "Breakdown", Key: 'b', KeyPos: 0},
	{Name: "Settings", Key: 's', KeyPos: 0},
}

// Tab indexes, matching the order of Tabs.
const (
	TabOverview = iota
	TabExpenses
	TabBreakdown
	TabSettings
)

// TabVisualWidth returns the rendered width of a tab, padding included.
// Mouse hit-testing relies on it matching RenderTabBar exactly.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && !keyInName(tab) {
		w += 3 // "[k]" suffix
	}
	return w
}

func keyInName(tab Tab) bool {
	return tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name)
}

// RenderTabBar renders the single-row tab bar with the given active index.
// Tabs are separated by a one-column divider.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	padStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(" "+tab.Name+" "))
			continue
		}

		var body string
		if keyInName(tab) {
			before := tab.Name[:tab.KeyPos]
			key := string(tab.Name[tab.KeyPos])
			after := tab.Name[tab.KeyPos+1:]
			body = inactiveStyle.Render(before) + keyStyle.Render(key) + inactiveStyle.Render(after)
		} else {
			body = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, padStyle.Render(" ")+body+padStyle.Render(" "))
	}

	bar := strings.Join(parts, dimKeyStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
