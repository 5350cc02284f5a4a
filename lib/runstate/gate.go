package runstate

import (
	"context"

	"mturk-extractor/lib/assert"
	"mturk-extractor/lib/chrono"
)

// Gate lets the pipeline run at most once per calendar day. It is read once
// before a run and written once after a successful one.
type Gate struct {
	store Store
	time  chrono.TimeAPI
}

func NewGate(store Store, time chrono.TimeAPI) Gate {
	assert.NotNil(time)
	return Gate{store: store, time: time}
}

// Today is the date key the gate compares against.
func (g Gate) Today() string {
	return chrono.DateKey(g.time.Now())
}

func (g Gate) ShouldRun(ctx context.Context) (bool, error) {
	last, err := g.store.LastRunDate(ctx)
	if err != nil {
		return false, err
	}
	return last != g.Today(), nil
}

func (g Gate) Mark(ctx context.Context) error {
	return g.store.MarkRun(ctx, g.Today())
}

func (g Gate) TotalRuns(ctx context.Context) (int64, error) {
	return g.store.TotalRuns(ctx)
}

func (g Gate) IncrementRuns(ctx context.Context) (int64, error) {
	return g.store.IncrementRuns(ctx)
}
