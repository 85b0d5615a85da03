package fetch

import "errors"

var (
	// ErrInvalidArgument is returned before any network call for a bad request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTransport wraps failures where no response was received.
	ErrTransport = errors.New("transport error")
	// ErrParse wraps response bodies that are not valid page content.
	ErrParse = errors.New("parse error")
)
