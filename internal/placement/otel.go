package placement

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/soa-sim/mctrial/internal/placement"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
