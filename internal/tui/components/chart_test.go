package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestChartTickStep(t *testing.T) {
	cases := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{10, 2},
		{100, 20},
		{4500, 500},
		{240, 50},
	}
	for _, c := range cases {
		if got := chartTickStep(c.max); got != c.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", c.max, got, c.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	cases := map[float64]string{
		0.5:     "0.50",
		20:      "20",
		1000:    "1k",
		1500:    "1.5k",
		2000000: "2M",
	}
	for v, want := range cases {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestSparklineLength(t *testing.T) {
	s := stripANSI(Sparkline([]float64{0, 5, 10}, lipgloss.Color("#ffffff")))
	if got := []rune(s); len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("Sparkline = %q", s)
	}
	if Sparkline(nil, lipgloss.Color("1")) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestBarChartKeepsLatestWhenNarrow(t *testing.T) {
	values := make([]float64, 40)
	labels := make([]string, 40)
	for i := range values {
		values[i] = float64(i + 1)
		labels[i] = "m"
	}
	labels[39] = "last"

	out := stripANSI(BarChart(values, labels, lipgloss.Color("4"), 40, 6))
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[len(lines)-1], "last") {
		t.Errorf("latest label dropped:\n%s", out)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line %d width %d exceeds 40", i, w)
		}
	}
}

func TestPlaceLabelsSkipsOverlap(t *testing.T) {
	got := placeLabels([]string{"Jan'25", "Feb", "Mar", "Apr"}, 3, 12)
	if want := "Jan'25   Apr"; got != want {
		t.Errorf("placeLabels = %q, want %q", got, want)
	}
}
