package storage

import "crowd-dashboard/pkg/model"

// Storage holds the view most recently rendered by the dashboard.
type Storage interface {
	Replace(v *model.View) error

	Current() (model.View, error)
}
