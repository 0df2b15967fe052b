package domain

import "errors"

var (
	// ErrMissingCredentials signals that no authentication mode is fully configured.
	ErrMissingCredentials = errors.New("missing search credentials")
	// ErrConnectionUnavailable signals a transport or server-side search backend failure.
	ErrConnectionUnavailable = errors.New("search backend unavailable")
	// ErrIndexNotFound signals that the target index has never been created.
	ErrIndexNotFound = errors.New("index not found")
	// ErrParse signals a structurally unusable ingest payload.
	ErrParse = errors.New("unparseable payload")
)
