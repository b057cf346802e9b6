package domain

import "errors"

var (
	// ErrEmptyDataset is returned when there are no records to aggregate.
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrSnapshotUnavailable means no cached snapshot exists and none could be computed.
	ErrSnapshotUnavailable = errors.New("statistics snapshot unavailable")
	// ErrIndexCorrupt marks a persisted index that is unreadable or inconsistent.
	ErrIndexCorrupt = errors.New("persisted index corrupt")
	// ErrModelInvocation wraps embedding or completion failures, including empty output.
	ErrModelInvocation = errors.New("model invocation failed")
)
