// Package dataset loads engagement records and hands them out as scoped handles.
package dataset

import (
	"context"
	"errors"
	"sync"

	"engagerag/internal/domain"
)

// ErrNotFound is returned by sources whose backing data does not exist.
var ErrNotFound = errors.New("dataset source not found")

// Source opens the engagement dataset.
type Source interface {
	Name() string
	Open(ctx context.Context) (*Handle, error)
}

// Handle owns a loaded copy of the dataset. Callers must Release it when done;
// records must not be used after release.
type Handle struct {
	mu       sync.Mutex
	records  []domain.Record
	released bool
	onClose  func() error
}

// NewHandle wraps records. onClose may be nil.
func NewHandle(records []domain.Record, onClose func() error) *Handle {
	return &Handle{records: records, onClose: onClose}
}

// Records returns the loaded rows in source order.
func (h *Handle) Records() []domain.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.records
}

// Release drops the records. It is safe to call more than once.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	h.records = nil
	if h.onClose != nil {
		return h.onClose()
	}
	return nil
}

// Static serves a fixed slice of records. Useful for tests and embedded data.
type Static struct {
	Records []domain.Record
}

func (s Static) Name() string { return "static" }

func (s Static) Open(ctx context.Context) (*Handle, error) {
	out := make([]domain.Record, len(s.Records))
	copy(out, s.Records)
	return NewHandle(out, nil), nil
}
