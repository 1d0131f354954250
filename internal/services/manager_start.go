package services

import (
	"context"
	"log/slog"
)

// Start runs the invalidation listener and the HTTP server in the background.
// The facet cache is warmed after the listener subscribes so no invalidation
// published before then goes unseen.
func (m *Manager) Start(bgCtx context.Context) error {
	if m.listener != nil {
		if err := m.listener.Start(bgCtx); err != nil {
			return err
		}
		m.warmMetaCache(bgCtx)
	}

	if m.server != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.server.Start(bgCtx); err != nil {
				slog.Error("HTTP server stopped with error", "error", err)
			}
		}()
	}
	return nil
}

// warmMetaCache computes the first facet value. Get blocks until the first
// successful recomputation, so a failed warm-up is retried on first use.
func (m *Manager) warmMetaCache(ctx context.Context) {
	if timeout := m.cfg.Search.Meta.RecomputeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := m.metaCache.Recompute(ctx); err != nil {
		slog.Warn("Failed to warm up search meta cache", "error", err)
		return
	}
	slog.Info("Warmed up search meta cache")
}
