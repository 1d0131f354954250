package services

import (
	"context"
	"log/slog"
)

func (m *Manager) Shutdown(ctx context.Context) {
	// Close storage last; the listener may still be recomputing from it
	if m.storageFactory != nil {
		defer func() {
			if err := m.storageFactory.Close(); err != nil {
				slog.Error("Error closing storage factory", "error", err)
			}
		}()
	}

	if m.server != nil {
		if err := m.server.Stop(ctx); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
	}

	if m.listener != nil {
		m.listener.Stop()
	}

	slog.Info("Waiting for background tasks to finish...")
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Background tasks finished")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for background tasks")
	}

	if m.bus != nil {
		if err := m.bus.Close(); err != nil {
			slog.Error("Error closing invalidation bus", "error", err)
		}
	}
}
