package dto

import "errors"

var (
	// ErrInvalidInput marks malformed or missing required input: empty topic
	// names, unknown foreign keys, out-of-range counts. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTopicConflict marks a subtopic name that already exists under a
	// different parent (or as a node of the other level). The caller decides
	// whether to rename, reuse, or reject; the store is left untouched.
	ErrTopicConflict = errors.New("topic name conflict")

	// ErrStorageConflict marks a uniqueness race that persisted past the
	// retry budget.
	ErrStorageConflict = errors.New("storage conflict")

	// ErrStorageUnavailable marks an unreachable or failing store. Fatal for
	// the current operation and aborts batch processing.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
