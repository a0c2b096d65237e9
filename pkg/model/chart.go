package model

import "time"

const DefaultTimeLayout = "3:04:05 PM"

// TimeFormatter turns sample timestamps into time-of-day chart labels.
type TimeFormatter struct {
	Layout   string
	Location *time.Location
}

func NewTimeFormatter(layout string, loc *time.Location) TimeFormatter {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	if loc == nil {
		loc = time.Local
	}
	return TimeFormatter{Layout: layout, Location: loc}
}

// Format expects a formatter built by NewTimeFormatter.
func (f TimeFormatter) Format(s Sample) string {
	return s.Timestamp().In(f.Location).Format(f.Layout)
}

// ChartData holds the two parallel arrays a line chart is drawn from.
type ChartData struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

func NewChartData(samples Samples, f TimeFormatter) ChartData {
	labels := make([]string, len(samples))
	for i, s := range samples {
		labels[i] = f.Format(s)
	}
	return ChartData{
		Labels: labels,
		Counts: samples.Counts(),
	}
}

func (c ChartData) Len() int {
	return len(c.Counts)
}

// Tail 返回最后 n 个点, n <= 0 时返回全部
func (c ChartData) Tail(n int) ChartData {
	if n <= 0 || n >= c.Len() {
		return c
	}
	start := c.Len() - n
	return ChartData{
		Labels: c.Labels[start:],
		Counts: c.Counts[start:],
	}
}
