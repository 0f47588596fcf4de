package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/tui/components"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCategoriesCard(cw int) string {
	t := theme.Active
	cats := a.summary.ByCategory
	innerW := components.CardInnerWidth(cw)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	if len(cats) == 0 {
		return components.ContentCard("By Category", mutedStyle.Render("No expenses recorded"), cw)
	}

	const shareW, amountW = 7, 14
	nameW := 22
	if a.isCompactLayout() {
		nameW = 16
	}
	barW := innerW - nameW - amountW - shareW - 3
	if barW < 8 {
		barW = 8
	}

	// Bars are scaled to the largest category so the leader fills the width.
	top := cats[0].Share
	for _, c := range cats[1:] {
		top = max(top, c.Share)
	}

	var body strings.Builder
	for i, c := range cats {
		color := t.CategoryColor(model.CategoryIndex(c.Category))
		nameStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

		scaled := 0.0
		if top > 0 {
			scaled = c.Share / top
		}

		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(string(c.Category), nameW))))
		body.WriteString(space)
		body.WriteString(components.ShareBar(scaled, barW, color))
		body.WriteString(space)
		body.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(a.currency(), c.Total))))
		body.WriteString(space)
		body.WriteString(shareStyle.Render(fmt.Sprintf("%*s", shareW, cli.FormatShare(c.Share))))
		if i < len(cats)-1 {
			body.WriteString("\n")
		}
	}

	return components.ContentCard(fmt.Sprintf("By Category (%d)", len(cats)), body.String(), cw)
}

func (a App) renderMonthsCard(cw int) string {
	t := theme.Active
	months := a.summary.ByMonth
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	if len(months) == 0 {
		return components.ContentCard("By Month", mutedStyle.Render("No dated expenses"), cw)
	}

	const labelW, countW, amountW = 10, 8, 14

	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = m.Total
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s", labelW, "Month", countW, "Items", amountW, "Total")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", labelW+countW+amountW+2)))
	body.WriteString("\n")

	var total float64
	for _, m := range months {
		total += m.Total
		body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s %*d ", labelW, m.Label, countW, m.Count)))
		body.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(a.currency(), m.Total))))
		body.WriteString("\n")
	}
	body.WriteString(mutedStyle.Render(strings.Repeat("─", labelW+countW+amountW+2)))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s", labelW, "Total", countW, "", amountW, cli.FormatMoney(a.currency(), total))))

	if len(values) > 1 && len(values) <= innerW-6 {
		body.WriteString("\n\n")
		body.WriteString(mutedStyle.Render("Trend "))
		body.WriteString(components.Sparkline(values, t.Accent))
	}

	return components.ContentCard(fmt.Sprintf("By Month (%d)", len(months)), body.String(), cw)
}

func (a App) renderBreakdownTab(cw int) string {
	if a.isCompactLayout() {
		return a.renderCategoriesCard(cw) + "\n" + a.renderMonthsCard(cw)
	}
	fifths := components.LayoutRow(cw, 5)
	leftW := fifths[0] + fifths[1] + fifths[2]
	rightW := cw - leftW
	return components.CardRow([]string{a.renderCategoriesCard(leftW), a.renderMonthsCard(rightW)})
}
