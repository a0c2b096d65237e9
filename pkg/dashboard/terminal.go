package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"crowd-dashboard/pkg/model"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// TerminalSurface prints the display text followed by a sparkline of the
// most recent points, one line per render.
type TerminalSurface struct {
	w         io.Writer
	maxPoints int
}

func NewTerminalSurface(w io.Writer, maxPoints int) *TerminalSurface {
	return &TerminalSurface{w: w, maxPoints: maxPoints}
}

func (t *TerminalSurface) Name() string {
	return "terminal"
}

func (t *TerminalSurface) Render(_ context.Context, v model.View) error {
	_, err := io.WriteString(t.w, FormatLine(v, t.maxPoints)+"\n")
	return err
}

// FormatLine 返回类似 "People Count: 12 ▃█ 12:16:40 AM .. 12:17:40 AM" 的一行
func FormatLine(v model.View, maxPoints int) string {
	chart := v.Chart.Tail(maxPoints)
	if chart.Len() == 0 {
		return v.Text
	}
	first, last := chart.Labels[0], chart.Labels[len(chart.Labels)-1]
	return fmt.Sprintf("%s %s %s .. %s", v.Text, Sparkline(chart.Counts), first, last)
}

// Sparkline scales counts between zero and the series maximum.
func Sparkline(counts []int) string {
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	var b strings.Builder
	top := len(sparkTicks) - 1
	for _, c := range counts {
		idx := 0
		if peak > 0 && c > 0 {
			idx = c * top / peak
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}
