package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

// ErrNotConfigured is returned by an Advisor built without any backend.
var ErrNotConfigured = errors.New("advisor: no backend configured")

// fallbackAdvisor wraps two Advisor implementations. It calls the primary
// first; if that returns an error it logs the failure and tries the secondary.
type fallbackAdvisor struct {
	primary   Advisor
	secondary Advisor
	logger    *slog.Logger
}

// NewFallbackAdvisor returns an Advisor that calls primary and, on failure,
// falls back to secondary. Either argument may be nil: if primary is nil it
// goes straight to secondary; if secondary is nil and primary fails, the
// primary error is returned wrapped. With both nil every call returns
// ErrNotConfigured.
func NewFallbackAdvisor(primary, secondary Advisor, logger *slog.Logger) Advisor {
	return &fallbackAdvisor{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Advise tries the primary Advisor, then the secondary.
func (f *fallbackAdvisor) Advise(ctx context.Context, a analysis.Analysis) (Advice, error) {
	if f.primary != nil {
		adv, err := f.primary.Advise(ctx, a)
		if err == nil {
			return adv, nil
		}
		f.logger.Warn("advisor: primary failed, trying secondary",
			"error", err,
			"intent", a.Intent,
		)
		if f.secondary == nil {
			return Advice{}, fmt.Errorf("advisor: primary failed and no secondary configured: %w", err)
		}
	}
	if f.secondary == nil {
		return Advice{}, ErrNotConfigured
	}
	return f.secondary.Advise(ctx, a)
}
