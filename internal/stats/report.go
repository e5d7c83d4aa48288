package stats

import (
	"context"

	"github.com/verte-zerg/tuirsvp/internal/model"
	"github.com/verte-zerg/tuirsvp/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Readings []model.ReadingAggregate
	Summary  Summary
	Trend    []float64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	readings, err := st.ListReadings(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Readings: readings,
		Summary:  Summarize(readings),
		Trend:    WPMTrend(readings, cfg.CurveWindow),
	}, nil
}
