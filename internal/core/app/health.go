package app

import (
	"context"
	"cratedeps/internal/shared/observability"
	"time"
)

// LastAnalysis returns when a file was last analysed successfully.
func (a *App) LastAnalysis() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastAnalysis
}

// Health reports the App state for the observability /health endpoint. A
// configured but missing store degrades the service.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	a.mu.RLock()
	tracked := len(a.reports)
	last := a.lastAnalysis
	a.mu.RUnlock()

	status := observability.HealthStatus{
		Status:        "up",
		FilesTracked:  tracked,
		LastAnalysis:  last,
		StoreAttached: a.store != nil,
	}
	if a.Config.DB.Enabled && a.store == nil {
		status.Status = "degraded"
	}
	return status
}
