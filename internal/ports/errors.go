package ports

import "errors"

var (
	// ErrDocumentNotFound is returned by Get, Update and Delete when no
	// document with the given id exists in the collection.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrIndexUnavailable is returned by Query when the store cannot serve
	// the requested filter and ordering combination server-side.
	ErrIndexUnavailable = errors.New("no index available for query")
)
