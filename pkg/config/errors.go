package config

import (
	"github.com/pkg/errors"
)

func NewReadError(configPath string, err error) error {
	return errors.Wrapf(err, "failed to read config file %q", configPath)
}

func NewParseError(configPath string, err error) error {
	return errors.Wrapf(err, "failed to parse config file %q", configPath)
}

func NewValidateError(configPath string, err error) error {
	return errors.Wrapf(err, "invalid config file %q", configPath)
}
