package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders a vertical bar chart with a y-axis scale and x-axis labels.
// When the values do not fit the width the oldest ones are dropped, so the
// chart always ends at the latest value.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	if len(labels) != len(values) {
		labels = nil
	}

	t := theme.Active

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := chartTickStep(maxVal)
	for int(math.Ceil(maxVal/step)) > max(2, height/2) {
		step *= 2
	}
	ceiling := math.Ceil(maxVal/step) * step
	ticks := max(1, int(math.Round(ceiling/step)))
	rowsPerTick := max(2, height/ticks)
	chartH := rowsPerTick * ticks

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	chartW := max(5, width-yLabelW-1)

	const gap = 1
	barW := min(8, max(2, (chartW+gap)/len(values)-gap))
	fit := max(1, (chartW+gap)/(barW+gap))
	if len(values) > fit {
		values = values[len(values)-fit:]
		if labels != nil {
			labels = labels[len(labels)-fit:]
		}
	}
	n := len(values)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	partial := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		barColor := color
		if float64(row)/float64(chartH) > 0.8 {
			barColor = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(barStyle.Render(strings.Repeat(string(partial[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└", yLabelW, "0")))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if labels != nil {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(placeLabels(labels, barW+gap, axisLen)))
	}

	return b.String()
}

// placeLabels lays out x-axis labels under their bars. The last label is
// always shown, shifted left if it would overflow; the others are skipped
// when they would touch a label already placed.
func placeLabels(labels []string, stride, axisLen int) string {
	n := len(labels)
	if n == 0 || axisLen <= 0 {
		return ""
	}
	buf := []rune(strings.Repeat(" ", axisLen))

	last := []rune(labels[n-1])
	if len(last) > axisLen {
		last = last[:axisLen]
	}
	lastPos := min((n-1)*stride, axisLen-len(last))
	copy(buf[lastPos:], last)

	nextFree := 0
	for i, lbl := range labels[:n-1] {
		pos := i * stride
		r := []rune(lbl)
		if pos < nextFree || pos+len(r) >= lastPos {
			continue
		}
		copy(buf[pos:], r)
		nextFree = pos + len(r) + 1
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel abbreviates an axis amount: 1500 -> "1.5k".
func formatChartLabel(v float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}} {
		if v < u.div {
			continue
		}
		if v == math.Trunc(v/u.div)*u.div {
			return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
		}
		return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
