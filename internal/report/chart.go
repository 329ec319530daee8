package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/basketloom/internal/mining"
)

const (
	barRune       = "█"
	maxLabelWidth = 40
)

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Chart renders a horizontal bar chart of the topN rules by m. Bars are
// scaled so the largest value spans width cells; values print with two
// decimals. It returns "" when there are no rules.
func (r *Report) Chart(m mining.Metric, topN, width int) string {
	if topN <= 0 {
		topN = r.opt.TopN
	}
	if width <= 0 {
		width = 30
	}
	top := mining.Rank(r.Rules, m, topN)
	if len(top) == 0 {
		return ""
	}

	maxVal := 0.0
	labelW := 0
	labels := make([]string, len(top))
	for i, rule := range top {
		labels[i] = truncate(rule.Label(), maxLabelWidth)
		labelW = max(labelW, utf8.RuneCountInString(labels[i]))
		if v := rule.Value(m); !math.IsInf(v, 0) && v > maxVal {
			maxVal = v
		}
	}

	lines := make([]string, 0, len(top))
	for i, rule := range top {
		v := rule.Value(m)
		n := width
		if !math.IsInf(v, 1) {
			n = 0
			if maxVal > 0 && v > 0 {
				n = int(math.Round(v / maxVal * float64(width)))
			}
		}
		pad := strings.Repeat(" ", labelW-utf8.RuneCountInString(labels[i]))
		lines = append(lines, fmt.Sprintf("%s%s │ %s %s",
			labels[i], pad,
			chartBarStyle.Render(strings.Repeat(barRune, n)),
			chartValue(v)))
	}

	title := chartTitleStyle.Render(fmt.Sprintf("Top %d rules by %s", len(top), m))
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
}

func chartValue(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n-1]) + "…"
}
