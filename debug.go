package lighttool

import (
	"context"
	"log/slog"
	"time"
)

// settleStats records what a PreRender pass recomputed.
// Only populated when the tool's debug mode is on.
type settleStats struct {
	selection   bool
	inspections bool
	transforms  bool
	elapsed     time.Duration
}

// debugLog records a settle pass at debug level.
func (t *Tool) debugLog(stats settleStats) {
	if !t.debug {
		return
	}
	if !stats.selection && !stats.inspections && !stats.transforms {
		return
	}
	visible := 0
	for _, h := range t.handles {
		if h.Visible() {
			visible++
		}
	}
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "lighttool settle",
		slog.Bool("selection", stats.selection),
		slog.Bool("inspections", stats.inspections),
		slog.Bool("transforms", stats.transforms),
		slog.Int("selected", len(t.selection)),
		slog.Int("visibleHandles", visible),
		slog.Duration("elapsed", stats.elapsed),
	)
}
