package http

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/freekieb7/werver/telemetry"
)

const name = "github.com/freekieb7/werver/http"

var (
	tracer = otel.Tracer(name)
	meter  = otel.Meter(name)
	logger = telemetry.Logger(name)

	connCnt     metric.Int64Counter
	overrideCnt metric.Int64Counter
	rejectCnt   metric.Int64Counter
	jobDuration metric.Float64Histogram
)

func init() {
	var err error

	connCnt, err = meter.Int64Counter("werver.connections",
		metric.WithDescription("The number of handled connections by outcome"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}

	overrideCnt, err = meter.Int64Counter("werver.overrides",
		metric.WithDescription("The number of connections answered with a replayed error page"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}

	rejectCnt, err = meter.Int64Counter("werver.rejections",
		metric.WithDescription("The number of connections turned away because the job queue was full"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}

	jobDuration, err = meter.Float64Histogram("werver.job.duration",
		metric.WithDescription("Time spent by a worker on one job"),
		metric.WithUnit("ms"))
	if err != nil {
		panic(err)
	}
}
