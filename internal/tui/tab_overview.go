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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	cur := a.currency()
	totals := a.summary.Totals
	project := a.summary.Project
	var b strings.Builder

	// Row 1: metric cards
	payment := components.Metric{Label: "Monthly Payment", Value: "not set", Delta: "set it in Settings"}
	if totals.MonthlyPayment > 0 {
		payment.Value = cli.FormatMoney(cur, totals.MonthlyPayment)
		payment.Delta = cli.FormatMonths(project.DurationMonths)
	}

	varianceNote := "on budget"
	switch {
	case totals.Variance > 0:
		varianceNote = "under budget"
	case totals.Variance < 0:
		varianceNote = "over budget"
	}

	cards := []components.Metric{
		payment,
		{
			Label: "Monthly Expenses",
			Value: cli.FormatMoney(cur, totals.TotalExpenses),
			Delta: fmt.Sprintf("%d expenses", a.summary.ExpenseCount),
		},
		{
			Label: "Monthly Profit/Loss",
			Value: cli.FormatSignedMoney(cur, totals.Variance),
			Delta: varianceNote,
			Color: t.SignColor(totals.Variance),
		},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: budget usage and project statistics, each only when meaningful
	var panels []func(int) string
	if totals.MonthlyPayment > 0 {
		panels = append(panels, a.renderUsageCard)
	}
	if project.DurationMonths > 1 {
		panels = append(panels, a.renderProjectCard)
	}
	if len(panels) > 0 {
		if a.isCompactLayout() {
			for _, render := range panels {
				b.WriteString(render(cw))
				b.WriteString("\n")
			}
		} else {
			widths := components.LayoutRow(cw, len(panels))
			rendered := make([]string, len(panels))
			for i, render := range panels {
				rendered[i] = render(widths[i])
			}
			b.WriteString(components.CardRow(rendered))
			b.WriteString("\n")
		}
	}

	// Row 3: monthly spend chart
	if months := a.summary.ByMonth; len(months) > 0 {
		values := make([]float64, len(months))
		for i, m := range months {
			values[i] = m.Total
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 6
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Spend by Month (%d)", len(months)),
			components.BarChart(values, chartMonthLabels(months), t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
	} else {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Spend by Month",
			muted.Render("No expenses yet. Press [x] then [a] to add one."), cw))
	}

	return b.String()
}

func (a App) renderUsageCard(outerW int) string {
	cur := a.currency()
	totals := a.summary.Totals

	note := cli.FormatMoney(cur, totals.Variance) + " left"
	if totals.Variance < 0 {
		note = cli.FormatMoney(cur, -totals.Variance) + " over"
	}

	// label, two spaces, percentage, note gap
	barW := components.CardInnerWidth(outerW) - 4 - 2 - 6 - 2 - lipgloss.Width(note)
	if barW < 10 {
		barW = 10
	}

	body := components.UsageBar("Used", totals.UsagePercent/100, note, 4, barW)
	return components.ContentCard("Budget Usage", body, outerW)
}

func (a App) renderProjectCard(outerW int) string {
	t := theme.Active
	cur := a.currency()
	p := a.summary.Project

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	profitStyle := lipgloss.NewStyle().Foreground(t.SignColor(p.TotalProfit)).Background(t.Surface).Bold(true)

	lines := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Total Revenue", cli.FormatMoney(cur, p.TotalProjectRevenue), valueStyle},
		{"Total Expenses", cli.FormatMoney(cur, p.TotalProjectExpenses), valueStyle},
		{"Total Profit", cli.FormatSignedMoney(cur, p.TotalProfit), profitStyle},
	}

	var body strings.Builder
	for i, l := range lines {
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", l.label)))
		body.WriteString(l.style.Render(l.value))
		if i < len(lines)-1 {
			body.WriteString("\n")
		}
	}

	return components.ContentCard(fmt.Sprintf("Project (%s)", cli.FormatMonths(p.DurationMonths)), body.String(), outerW)
}

// chartMonthLabels builds short x-axis labels: the month abbreviation, with
// the two-digit year on the first bar and wherever the year changes.
func chartMonthLabels(months []model.MonthTotal) []string {
	labels := make([]string, len(months))
	prevYear := 0
	for i, m := range months {
		if y := m.Month.Year(); y != prevYear {
			labels[i] = m.Month.Format("Jan'06")
			prevYear = y
			continue
		}
		labels[i] = m.Month.Format("Jan")
	}
	return labels
}
