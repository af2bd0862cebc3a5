package models

import "errors"

// ErrNotFound is returned when a referenced identifier or title is absent
// from the catalog or the vector store. Caller error; never retried.
var ErrNotFound = errors.New("item not found")
