package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownFamily   = errors.New("unknown family")
	ErrNoRoot          = errors.New("no root individual")
	ErrSourceNotLoaded = errors.New("source not loaded")
	ErrInvalidArgument = errors.New("invalid argument")
)
