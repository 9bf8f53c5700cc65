package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/koscakluka/kurt/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	stageOutcomes   = mustInt64Counter("kurt.pipeline.stage.outcomes", "Finished pipeline stages by stage and outcome.")
	rejectedPresses = mustInt64Counter("kurt.mic.rejected_presses", "Mic presses rejected while a pipeline was running.")
)

func mustInt64Counter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Error("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}
