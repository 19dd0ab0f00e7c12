package claims

import (
	"context"
	"time"

	"github.com/claimdesk/claimdesk/pkg/logging"
)

// Watcher periodically re-reads the primary store and delivers the full
// collection to an on-snapshot callback. It is the subscription mechanism
// for a backend without push: each delivery replaces local state wholesale,
// so a remote write and a local optimistic update resolve by arrival order.
type Watcher struct {
	store      Store
	interval   time.Duration
	onSnapshot func([]Claim)
	onError    func(error)
	logger     *logging.Logger
}

// NewWatcher builds a watcher over the store. A zero interval disables it.
func NewWatcher(store Store, interval time.Duration, onSnapshot func([]Claim), onError func(error), logger *logging.Logger) *Watcher {
	if store == nil {
		panic("claims: store cannot be nil")
	}
	if onSnapshot == nil {
		panic("claims: snapshot callback cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Watcher{
		store:      store,
		interval:   interval,
		onSnapshot: onSnapshot,
		onError:    onError,
		logger:     logger,
	}
}

// Run polls until ctx is cancelled. Scan failures are reported through the
// error callback and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("claim store watcher disabled")
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("claim store watcher started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("claim store watcher stopped")
			return
		case <-ticker.C:
			claims, err := w.store.LoadAll(ctx)
			if err != nil {
				w.logger.Warn("claim store watcher scan failed", "error", err)
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			w.onSnapshot(claims)
		}
	}
}
