package scrape

import "time"

// Body is the raw response of one tick, tagged with the tick number so
// the parser can tell which of two overlapping ticks is newer.
type Body struct {
	tick      uint64
	targetUrl string
	data      []byte
	fetchedAt time.Time
}

func NewBody(tick uint64, targetUrl string, data []byte, fetchedAt time.Time) *Body {
	return &Body{
		tick:      tick,
		targetUrl: targetUrl,
		data:      data,
		fetchedAt: fetchedAt,
	}
}
