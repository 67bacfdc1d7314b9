// Package reconciler repairs counter drift for the most-read users.
package reconciler

import (
	"context"
	"time"

	"github.com/mnkvreels/vreels-backend/internal/config"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/metrics"
	"github.com/mnkvreels/vreels-backend/internal/store"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

const (
	defaultInterval = time.Minute
	defaultTopN     = 100
)

// Recounter rebuilds a user's counters from the edge table and refreshes
// the cache.
type Recounter interface {
	Recount(ctx context.Context, userID string) (domain.Counts, error)
}

// Reconciler recounts the top-N users of the hot-key ZSET on every tick,
// then clears the scores so the next window starts fresh.
type Reconciler struct {
	hot       store.CountStore
	recounter Recounter
	interval  time.Duration
	topN      int64
	quit      chan struct{}
	doneCh    chan struct{}
}

// New creates a new Reconciler. Zero interval or top_n fall back to one
// minute and 100 users.
func New(hot store.CountStore, recounter Recounter, cfg config.ReconcilerConfig) *Reconciler {
	r := &Reconciler{
		hot:       hot,
		recounter: recounter,
		interval:  cfg.Interval,
		topN:      int64(cfg.TopN),
		quit:      make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	if r.interval <= 0 {
		r.interval = defaultInterval
	}
	if r.topN <= 0 {
		r.topN = defaultTopN
	}
	return r
}

// Start launches the reconciler in a background goroutine. It stops when
// ctx is cancelled or Stop is called.
func (r *Reconciler) Start(ctx context.Context) {
	go r.loop(ctx)
}

// Stop signals the loop to exit. Wait on Done for it to finish.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done is closed once the loop has exited.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass and returns how many users were recounted.
func (r *Reconciler) Reconcile(ctx context.Context) int {
	l := pkglog.L().With().Str(pkglog.FieldLogType, "reconciler").Logger()

	userIDs, err := r.hot.GetTopHotKeys(ctx, r.topN)
	if err != nil {
		l.Error().Err(err).Msg("failed to read hot keys")
		return 0
	}
	if len(userIDs) == 0 {
		l.Debug().Msg("no hot keys to reconcile")
		return 0
	}

	recounted := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.recounter.Recount(ctx, userID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to recount user")
			continue
		}
		recounted++
	}
	metrics.ReconciledUsersTotal.Add(float64(recounted))

	if err := r.hot.ResetHotKeyScores(ctx); err != nil {
		l.Error().Err(err).Msg("failed to reset hot key scores")
	}

	l.Info().Int("recounted", recounted).Int("hot_keys", len(userIDs)).Msg("hot-key reconciliation complete")
	return recounted
}
