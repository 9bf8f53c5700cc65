package openai

import (
	"go.opentelemetry.io/otel"
)

const scopeName = "github.com/koscakluka/kurt/core/llms/openai"

var tracer = otel.Tracer(scopeName)
