package metrics

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var log = logging.Logger("metrics")

// HasherKey tags measurements with the name of the hasher a proof runs over.
var HasherKey = tag.MustNewKey("hasher")

// WithHasher returns ctx tagged with the hasher name. Measurements recorded
// on the returned context are split per hasher.
func WithHasher(ctx context.Context, name string) context.Context {
	tagged, err := tag.New(ctx, tag.Upsert(HasherKey, name))
	if err != nil {
		log.Warnf("failed to tag context with hasher %s: %s", name, err)
		return ctx
	}
	return tagged
}

// Int64Counter is a summed opencensus measure, broken down by hasher.
type Int64Counter struct {
	measure *stats.Int64Measure
	view    *view.View
}

// NewInt64Counter registers a dimensionless counter. Counters are package
// level vars, so a registration failure panics at start up.
func NewInt64Counter(name, desc string) *Int64Counter {
	log.Debugf("registering int64 counter: %s - %s", name, desc)
	m := stats.Int64(name, desc, stats.UnitDimensionless)
	v := &view.View{
		Name:        name,
		Measure:     m,
		Description: desc,
		TagKeys:     []tag.Key{HasherKey},
		Aggregation: view.Sum(),
	}
	if err := view.Register(v); err != nil {
		panic(err)
	}
	return &Int64Counter{measure: m, view: v}
}

// Inc adds v to the counter.
func (c *Int64Counter) Inc(ctx context.Context, v int64) {
	stats.Record(ctx, c.measure.M(v))
}
