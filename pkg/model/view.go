package model

import (
	"strconv"
	"time"
)

const DisplayPrefix = "People Count: "

// View is everything a render surface draws after one tick.
type View struct {
	Text      string    `json:"text"`
	Latest    int       `json:"latest"`
	Chart     ChartData `json:"chart"`
	UpdatedAt time.Time `json:"updated_at"`
}

func DisplayText(latest int) string {
	return DisplayPrefix + strconv.Itoa(latest)
}

// NewView derives a fresh view from the samples; nothing from earlier
// views is carried over.
func NewView(samples Samples, f TimeFormatter, now time.Time) View {
	latest := samples.Latest()
	return View{
		Text:      DisplayText(latest),
		Latest:    latest,
		Chart:     NewChartData(samples, f),
		UpdatedAt: now,
	}
}

// EmptyView is what the dashboard shows before the first successful tick.
func EmptyView(now time.Time) View {
	return NewView(nil, NewTimeFormatter("", nil), now)
}
