package orchestration

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/koscakluka/kurt/core/events"
	"github.com/koscakluka/kurt/core/llms"
	"github.com/koscakluka/kurt/core/speechtotext"
	"github.com/koscakluka/kurt/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type pipelineIDKey struct{}

func contextWithPipelineID(ctx context.Context, pipelineID uuid.UUID) context.Context {
	return context.WithValue(ctx, pipelineIDKey{}, pipelineID)
}

func pipelineIDFrom(ctx context.Context) uuid.UUID {
	pipelineID, _ := ctx.Value(pipelineIDKey{}).(uuid.UUID)
	return pipelineID
}

// spawn starts a stage on its own goroutine. If the stage panics, onPanic
// turns the panic into that stage's failure events.
func (o *Orchestrator) spawn(name string, pipelineID uuid.UUID, run func(ctx context.Context) error, onPanic func(pipelineID uuid.UUID, err error)) bool {
	worker := panicSafeNamedWorker(name, run)
	ctx := contextWithPipelineID(o.baseContext, pipelineID)
	return o.tasks.spawn(ctx, name, pipelineID, o.session.IsRunning, func(ctx context.Context) {
		if err := worker(ctx); err != nil {
			logger.ErrorContext(ctx, "pipeline task failed", "task", name, "pipeline_id", pipelineID.String(), "error", err)
			onPanic(pipelineID, err)
		}
	})
}

func startStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, stage, trace.WithAttributes(
		attribute.String("pipeline.id", pipelineIDFrom(ctx).String()),
	))
}

func (o *Orchestrator) runCaptureTask(ctx context.Context) error {
	pipelineID := pipelineIDFrom(ctx)
	ctx, span := startStageSpan(ctx, "capture")
	defer span.End()

	transcript, err := o.speechCapture.Capture(ctx,
		speechtotext.WithListenTimeout(o.listenTimeout),
		speechtotext.WithPhraseTimeLimit(o.phraseTimeLimit),
		speechtotext.WithSpeechStartedCallback(func() {
			o.offer(events.NewCaptureProgress(pipelineID, ""))
		}),
		speechtotext.WithInterimTranscriptionCallback(func(partial string) {
			o.offer(events.NewCaptureProgress(pipelineID, partial))
		}),
	)
	transcript = strings.TrimSpace(transcript)
	if err == nil && transcript == "" {
		err = speechtotext.NewUnintelligibleError(nil)
	}

	if err != nil {
		recordStageFailure(ctx, span, "capture", string(speechtotext.KindOf(err)), err)
		o.schedule(events.NewCaptureFailed(pipelineID, err))
	} else {
		recordStageSuccess(ctx, "capture")
		o.schedule(events.NewCaptureSucceeded(pipelineID, transcript))
	}
	o.schedule(events.NewCaptureEnded(pipelineID))
	return nil
}

func (o *Orchestrator) runGenerationTask(ctx context.Context, prompt string) error {
	pipelineID := pipelineIDFrom(ctx)
	ctx, span := startStageSpan(ctx, "generate")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	response, err := o.languageModel.Generate(ctx, prompt)
	response = strings.TrimSpace(response)
	if err == nil && response == "" {
		err = llms.NewUnknownError(errors.New("empty response"))
	}

	if err != nil {
		recordStageFailure(ctx, span, "generation", llms.KindOf(err).String(), err)
		o.schedule(events.NewGenerationFailed(pipelineID, err))
		return nil
	}

	recordStageSuccess(ctx, "generation")
	o.schedule(events.NewGenerationSucceeded(pipelineID, response))
	return nil
}

func (o *Orchestrator) runPlaybackTask(ctx context.Context, text string) error {
	pipelineID := pipelineIDFrom(ctx)
	ctx, span := startStageSpan(ctx, "playback")
	defer span.End()

	err := o.speechPlayback.Speak(ctx, text)
	if err != nil {
		err = texttospeech.NewPlaybackError(err)
		logger.WarnContext(ctx, "speech playback failed", "pipeline_id", pipelineID.String(), "error", err)
		recordStageFailure(ctx, span, "playback", "error", err)
	} else {
		recordStageSuccess(ctx, "playback")
	}

	o.schedule(events.NewPlaybackEnded(pipelineID, err))
	return nil
}

func (o *Orchestrator) captureTaskPanicked(pipelineID uuid.UUID, err error) {
	o.schedule(events.NewCaptureFailed(pipelineID, speechtotext.NewDeviceError(err)))
	o.schedule(events.NewCaptureEnded(pipelineID))
}

func (o *Orchestrator) generationTaskPanicked(pipelineID uuid.UUID, err error) {
	o.schedule(events.NewGenerationFailed(pipelineID, llms.NewUnknownError(err)))
}

func (o *Orchestrator) playbackTaskPanicked(pipelineID uuid.UUID, err error) {
	o.schedule(events.NewPlaybackEnded(pipelineID, texttospeech.NewPlaybackError(err)))
}

func recordStageSuccess(ctx context.Context, stage string) {
	stageOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", "success"),
	))
}

func recordStageFailure(ctx context.Context, span trace.Span, stage, kind string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	stageOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", kind),
	))
}
