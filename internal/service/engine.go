// Package service answers analytics questions about the engagement dataset
// by combining the statistics snapshot, retrieved analysis documents and a
// language model.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"engagerag/internal/dataset"
	"engagerag/internal/docs"
	"engagerag/internal/domain"
	"engagerag/internal/index"
	"engagerag/internal/metrics"
	"engagerag/internal/stats"
)

// minRelevance drops retrieved documents that share no terms with the query.
const minRelevance = 1e-9

// DefaultRebuildCooldown is how long a failed index build blocks the next attempt.
const DefaultRebuildCooldown = 30 * time.Second

// Options tunes an Engine. Zero values pick defaults.
type Options struct {
	TopK            int
	RebuildCooldown time.Duration
	Log             *logrus.Logger
}

// Engine is safe for concurrent use. Materialization runs at most once at a
// time; once Ready, queries share the snapshot and index read-only.
type Engine struct {
	source    dataset.Source
	snapshots *stats.Store
	index     *index.Index
	completer domain.Completer
	topK      int
	cooldown  time.Duration
	log       *logrus.Logger
	now       func() time.Time

	// buildMu serializes materialization; the fields below it are only
	// touched while it is held.
	buildMu       sync.Mutex
	buildFailedAt time.Time
	buildErr      error

	// mu guards the published state and is never held across I/O.
	mu      sync.RWMutex
	ready   bool
	snap    domain.Snapshot
	hasSnap bool
}

func NewEngine(source dataset.Source, snapshots *stats.Store, ix *index.Index, completer domain.Completer, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = index.DefaultTopK
	}
	if opts.RebuildCooldown <= 0 {
		opts.RebuildCooldown = DefaultRebuildCooldown
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Engine{
		source:    source,
		snapshots: snapshots,
		index:     ix,
		completer: completer,
		topK:      opts.TopK,
		cooldown:  opts.RebuildCooldown,
		log:       opts.Log,
		now:       time.Now,
	}
}

// Status is a point-in-time view of the engine's readiness.
type Status struct {
	Ready      bool   `json:"ready"`
	Snapshot   bool   `json:"snapshot"`
	Index      string `json:"index"`
	TotalPosts int    `json:"total_posts"`
	Documents  int    `json:"documents"`
}

// Status never waits for a running materialization.
func (e *Engine) Status() Status {
	e.mu.RLock()
	st := Status{Ready: e.ready, Snapshot: e.hasSnap, TotalPosts: e.snap.TotalPosts}
	e.mu.RUnlock()
	st.Index = e.index.State().String()
	if m, ok := e.index.Manifest(); ok {
		st.Documents = m.Count
	}
	return st
}

// Snapshot returns the loaded statistics snapshot, if any.
func (e *Engine) Snapshot() (domain.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap, e.hasSnap
}

func (e *Engine) isReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

func (e *Engine) publishSnapshot(snap domain.Snapshot) {
	e.mu.Lock()
	e.snap, e.hasSnap = snap, true
	e.mu.Unlock()
}

// EnsureReady loads or computes the snapshot and loads or rebuilds the index.
// It is idempotent once it has succeeded; after a failure the next call
// retries whatever is still missing. A failed index build is not retried
// until the rebuild cooldown has passed.
func (e *Engine) EnsureReady(ctx context.Context) error {
	if e.isReady() {
		return nil
	}
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if e.isReady() {
		return nil
	}

	var handle *dataset.Handle
	defer func() {
		if handle == nil {
			return
		}
		if err := handle.Release(); err != nil {
			e.log.WithError(err).WithField("source", e.source.Name()).Warn("release dataset")
		}
	}()
	records := func() ([]domain.Record, error) {
		if handle == nil {
			h, err := e.source.Open(ctx)
			if err != nil {
				return nil, err
			}
			handle = h
		}
		return handle.Records(), nil
	}

	snap, ok := e.Snapshot()
	if !ok {
		var err error
		if snap, err = e.materializeSnapshot(records); err != nil {
			return err
		}
		e.publishSnapshot(snap)
	}

	if e.index.State() != index.Ready {
		if err := e.index.Load(ctx); err != nil {
			e.log.WithError(err).Warn("persisted index unusable, rebuilding")
		}
	}
	if e.index.NeedsRebuild(docs.ExpectedShape(snap)) {
		if err := e.rebuild(ctx, snap, records); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.ready = true
	total := e.snap.TotalPosts
	e.mu.Unlock()
	e.log.WithFields(logrus.Fields{
		"total_posts": total,
		"index":       e.index.State().String(),
	}).Info("analytics engine ready")
	return nil
}

// rebuild synthesizes documents from the dataset and builds the index. A
// snapshot that no longer describes the dataset is recomputed first so the
// index and the context block always come from the same records.
func (e *Engine) rebuild(ctx context.Context, snap domain.Snapshot, records func() ([]domain.Record, error)) error {
	if !e.buildFailedAt.IsZero() {
		if wait := e.cooldown - e.now().Sub(e.buildFailedAt); wait > 0 {
			return fmt.Errorf("index build failed recently, next attempt in %s: %w", wait.Round(time.Second), e.buildErr)
		}
	}

	recs, err := records()
	if err != nil {
		return fmt.Errorf("open dataset for index build: %w", err)
	}
	documents := docs.Build(recs, snap)
	if snap.TotalPosts != len(recs) || !docs.ShapeOf(documents).Equal(docs.ExpectedShape(snap)) {
		e.log.WithFields(logrus.Fields{
			"snapshot_posts": snap.TotalPosts,
			"dataset_posts":  len(recs),
		}).Warn("cached snapshot does not match dataset, recomputing")
		if snap, err = e.computeSnapshot(recs); err != nil {
			return err
		}
		e.publishSnapshot(snap)
		if !e.index.NeedsRebuild(docs.ExpectedShape(snap)) {
			return nil
		}
		documents = docs.Build(recs, snap)
	}

	if err := e.index.Build(ctx, documents); err != nil {
		e.buildFailedAt, e.buildErr = e.now(), err
		return fmt.Errorf("build index: %w", err)
	}
	e.buildFailedAt, e.buildErr = time.Time{}, nil
	return nil
}

func (e *Engine) materializeSnapshot(records func() ([]domain.Record, error)) (domain.Snapshot, error) {
	snap, err := e.snapshots.Load()
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrSnapshotUnavailable) {
		e.log.WithError(err).WithField("path", e.snapshots.Path()).Warn("cached snapshot unreadable, recomputing")
	}

	recs, err := records()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSnapshotUnavailable, err)
	}
	return e.computeSnapshot(recs)
}

func (e *Engine) computeSnapshot(recs []domain.Record) (domain.Snapshot, error) {
	snap, err := stats.Compute(recs)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSnapshotUnavailable, err)
	}
	metrics.SnapshotComputationsTotal.Inc()
	if err := e.snapshots.Save(snap); err != nil {
		e.log.WithError(err).WithField("path", e.snapshots.Path()).Warn("write snapshot")
	}
	return snap, nil
}

// Answer replies to one question. It never fails: problems degrade to one of
// the fixed messages and are logged.
func (e *Engine) Answer(ctx context.Context, query string, history []domain.Exchange) string {
	if err := e.EnsureReady(ctx); err != nil {
		e.log.WithError(err).Warn("analytics engine not ready")
	}

	if IsGreeting(query) {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeGreeting).Inc()
		return GreetingMessage
	}

	snap, ok := e.Snapshot()
	if !ok {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return UnavailableMessage
	}

	prompt := BuildPrompt(snap, e.retrieve(ctx, query), history, query)
	text, err := e.completer.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: blank completion", domain.ErrModelInvocation)
	}
	if err != nil {
		e.log.WithError(err).Error("completion failed")
		metrics.ModelErrorsTotal.WithLabelValues("complete").Inc()
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeModelError).Inc()
		return ErrorMessage
	}
	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeAnswered).Inc()
	return text
}

func (e *Engine) retrieve(ctx context.Context, query string) []domain.SearchResult {
	if e.index.State() != index.Ready {
		return nil
	}
	res, err := e.index.Retrieve(ctx, query, e.topK)
	if err != nil {
		e.log.WithError(err).Warn("retrieval failed, answering from statistics only")
		return nil
	}
	out := res[:0]
	for _, r := range res {
		if r.Score > minRelevance {
			out = append(out, r)
		}
	}
	return out
}
