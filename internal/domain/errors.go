package domain

import "errors"

var (
	ErrServerClose   = errors.New("server sent close frame")
	ErrUnknownSymbol = errors.New("symbol not listed on venue")
)
