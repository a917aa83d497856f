package app

import (
	"context"
	"fmt"
	"time"

	"pycheck/internal/shared/observability"
	"pycheck/internal/shared/util"
)

// HealthService reports component state for the observability endpoint.
type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app == nil || s.app.parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
		return status
	}
	status.Components["parser"] = "ok"
	status.Components["parse_cache"] = fmt.Sprintf("%d/%d entries", s.app.cache.Len(), s.app.cache.Cap())
	status.Components["heap"] = fmt.Sprintf("%d MB", util.GetHeapAllocMB())

	if s.app.resolver.Enabled() {
		status.Components["resolver"] = "ok"
	} else {
		status.Components["resolver"] = "disabled (no package root)"
	}

	if last := s.app.LastReport(); last != nil {
		status.Components["last_run"] = fmt.Sprintf(
			"%s (%d files, %d diagnostics)",
			last.StartedAt.Format(time.RFC3339), last.Files, len(last.Diagnostics),
		)
	} else {
		status.Components["last_run"] = "none"
	}

	return status
}
