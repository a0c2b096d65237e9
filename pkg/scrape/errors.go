package scrape

import "github.com/pkg/errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrDecode           = errors.New("malformed crowd data")
	ErrAlreadyStarted   = errors.New("scraper already started")
	ErrNotStarted       = errors.New("scraper not started")
)

const (
	reasonFetch  = "fetch"
	reasonStatus = "status"
	reasonDecode = "decode"
	reasonRender = "render"
)
