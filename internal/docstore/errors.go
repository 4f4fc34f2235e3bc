package docstore

import "errors"

var (
	// ErrNotFound means the document or its persisted index does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrEmptyContent means parsing produced no usable text.
	ErrEmptyContent = errors.New("document contains no readable content")
)
