package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Float64Timer records durations in milliseconds.
type Float64Timer struct {
	measureMs *stats.Float64Measure
	view      *view.View
}

// NewTimerMs creates and registers a timer with a distribution aggregation.
func NewTimerMs(name, desc string) *Float64Timer {
	log.Debugf("registering timer: %s - %s", name, desc)
	fMeasure := stats.Float64(name, desc, stats.UnitMilliseconds)
	fView := &view.View{
		Name:        name,
		Measure:     fMeasure,
		Description: desc,
		TagKeys:     []tag.Key{HasherKey},
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000),
	}
	if err := view.Register(fView); err != nil {
		panic(err)
	}

	return &Float64Timer{
		measureMs: fMeasure,
		view:      fView,
	}
}

// Start starts a stopwatch for the timer.
func (t *Float64Timer) Start(ctx context.Context) *Stopwatch {
	return &Stopwatch{
		ctx:      ctx,
		start:    time.Now(),
		recorder: t.measureMs,
	}
}

// Stopwatch measures a single duration.
type Stopwatch struct {
	ctx      context.Context
	start    time.Time
	recorder *stats.Float64Measure
}

// Stop records the elapsed time since Start and returns it.
func (sw *Stopwatch) Stop(ctx context.Context) time.Duration {
	d := time.Since(sw.start)
	stats.Record(ctx, sw.recorder.M(float64(d)/float64(time.Millisecond)))
	return d
}
