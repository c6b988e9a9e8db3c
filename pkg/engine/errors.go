package engine

import "errors"

var (
	// ErrInvalidQuery is returned when a query is empty after
	// normalization or exceeds the configured maximum length.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrBuildFailed is returned when the corpus source fails during a
	// build. A previously published snapshot stays active.
	ErrBuildFailed = errors.New("corpus build failed")

	// ErrStoreRequired is returned when an engine without a record store
	// is asked to search.
	ErrStoreRequired = errors.New("record store required")

	// ErrSourceRequired is returned when an engine without a corpus
	// source must build.
	ErrSourceRequired = errors.New("corpus source required")
)
