package storage

import "github.com/pkg/errors"

var (
	ErrNilView = errors.New("view cannot be nil")
	ErrNoView  = errors.New("no view rendered yet")
)
