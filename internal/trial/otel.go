package trial

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/soa-sim/mctrial/internal/trial"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
