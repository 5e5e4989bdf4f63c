// Package poller bridges the gap between "document uploaded to blob
// storage" and "document visible in the search index". Index updates are
// asynchronous and provider-controlled, so the only option is to query,
// wait, and query again until the document appears or the attempt budget
// runs out. The wait is intentionally synchronous: it blocks the calling
// flow, and the caller abandons it by cancelling the context.
package poller

import (
	"context"
	"time"

	"axinsight/internal/apperr"
	"axinsight/internal/core"
	"axinsight/internal/logger"
)

// Index is the subset of the search index client the poller drives.
type Index interface {
	SearchByBlobName(ctx context.Context, blobName string, top int) ([]core.DocumentChunk, error)
	Run(ctx context.Context) error
	ResetAndRun(ctx context.Context) error
	HasIndexer() bool
}

// Invalidator drops cached document queries. Invalidation before every
// attempt is mandatory: the poller exists to observe a state change, and a
// cached empty result would hide it forever.
type Invalidator interface {
	InvalidateDocQueries() error
}

// quickDelays is the backoff schedule for the quick path. Fibonacci-shaped
// to keep the total wait near one minute.
var quickDelays = []time.Duration{
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
	8 * time.Second,
	13 * time.Second,
	21 * time.Second,
}

const (
	// rerunAttempts are the quick-path attempts after which the indexer is
	// nudged with an out-of-band run request.
	firstRerunAttempt  = 2
	secondRerunAttempt = 3

	forcedAttempts = 12
	forcedDelay    = 3 * time.Second

	defaultTop = 10
)

// Poller waits for an uploaded document to become visible in the index.
type Poller struct {
	index Index
	cache Invalidator // may be nil
	sleep func(time.Duration)
	top   int
}

// New creates a poller. cache may be nil when no query cache is in use.
func New(index Index, cache Invalidator) *Poller {
	return &Poller{
		index: index,
		cache: cache,
		sleep: time.Sleep,
		top:   defaultTop,
	}
}

// WaitForDocument runs the quick path: up to six attempts with the
// Fibonacci backoff, nudging the indexer after attempts two and three when
// one is configured. It returns the confirmed hits as soon as a query
// produces any, without exhausting the budget. Budget exhaustion is an
// indexing-lag condition, not a retrieval error: the caller may simply try
// again later.
func (p *Poller) WaitForDocument(ctx context.Context, blobName string) ([]core.DocumentChunk, error) {
	for i, delay := range quickDelays {
		attempt := i + 1
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits := p.query(ctx, blobName, attempt)
		if len(hits) > 0 {
			logger.Info("document visible in index", "blob", blobName, "attempt", attempt, "hits", len(hits))
			return hits, nil
		}

		if (attempt == firstRerunAttempt || attempt == secondRerunAttempt) && p.index.HasIndexer() {
			// Best effort; a failed nudge just means more waiting.
			if err := p.index.Run(ctx); err != nil {
				logger.Warn("indexer run request failed", "attempt", attempt, "error", err.Error())
			}
		}

		p.sleep(delay)
	}
	return nil, apperr.IndexingLag("document not yet indexed: " + blobName)
}

// ForceReindex runs the Reset→Run path: reset the indexer's change
// tracking, trigger a run, then poll on a fixed short interval with the
// larger attempt budget.
func (p *Poller) ForceReindex(ctx context.Context, blobName string) ([]core.DocumentChunk, error) {
	if err := p.index.ResetAndRun(ctx); err != nil {
		return nil, err
	}
	for attempt := 1; attempt <= forcedAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hits := p.query(ctx, blobName, attempt)
		if len(hits) > 0 {
			logger.Info("document visible after forced reindex", "blob", blobName, "attempt", attempt, "hits", len(hits))
			return hits, nil
		}
		p.sleep(forcedDelay)
	}
	return nil, apperr.IndexingLag("document not yet indexed after forced reindex: " + blobName)
}

// query invalidates the cache, then issues one poll attempt. Retrieval
// errors inside the budget are logged and treated as an empty result; the
// next attempt may succeed.
func (p *Poller) query(ctx context.Context, blobName string, attempt int) []core.DocumentChunk {
	if p.cache != nil {
		if err := p.cache.InvalidateDocQueries(); err != nil {
			logger.Warn("failed to invalidate document query cache", "error", err.Error())
		}
	}
	hits, err := p.index.SearchByBlobName(ctx, blobName, p.top)
	if err != nil {
		logger.Warn("poll attempt failed", "blob", blobName, "attempt", attempt, "error", err.Error())
		return nil
	}
	return hits
}
