package orchestration

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/kurt/core/events"
	"github.com/koscakluka/kurt/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Orchestrator runs one listen, think, speak pipeline per mic press.
//
// OnMicPressed, Dispatch and the Surface calls they make belong to the UI
// loop. Background tasks only talk back through Results.
type Orchestrator struct {
	session *Session
	surface Surface

	state      State
	pipelineID uuid.UUID

	speechCapture  speechCapture
	languageModel  languageModel
	speechPlayback speechPlayback

	assistantName string
	creator       string
	preamble      string
	preambleSet   bool
	maxHistory    int

	listenTimeout   time.Duration
	phraseTimeLimit time.Duration
	joinTimeout     time.Duration

	resultQueueCapacity int
	results             chan events.Event
	presses             chan struct{}

	baseContext context.Context
	cancel      context.CancelFunc
	tasks       *taskRegistry

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewOrchestrator wires the orchestrator to a session and a surface and
// puts the surface into its initial idle state. A nil session starts a new
// one; a nil surface drops all updates.
func NewOrchestrator(session *Session, surface Surface, opts ...OrchestratorOption) *Orchestrator {
	if session == nil {
		session = NewSession()
	}
	if surface == nil {
		surface = noopSurface{}
	}

	o := &Orchestrator{
		session:             session,
		surface:             surface,
		state:               StateIdle,
		assistantName:       DefaultAssistantName,
		creator:             DefaultCreator,
		maxHistory:          DefaultMaxHistory,
		listenTimeout:       speechtotext.DefaultListenTimeout,
		phraseTimeLimit:     speechtotext.DefaultPhraseTimeLimit,
		joinTimeout:         DefaultJoinTimeout,
		resultQueueCapacity: DefaultResultQueueCapacity,
		baseContext:         context.Background(),
		tasks:               newTaskRegistry(),
		presses:             make(chan struct{}, 1),
		closeCh:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(o)
	}

	if !o.preambleSet {
		o.preamble = DefaultPreamble(o.assistantName, o.creator)
	}
	o.baseContext, o.cancel = context.WithCancel(o.baseContext)
	o.results = make(chan events.Event, o.resultQueueCapacity)

	o.surface.SetStatusText(StatusReady)
	o.refreshTranscript()
	o.enterIdle()

	return o
}

func (o *Orchestrator) Session() *Session     { return o.session }
func (o *Orchestrator) State() State          { return o.state }
func (o *Orchestrator) AssistantName() string { return o.assistantName }

// Results is drained by the UI loop, which hands every event to Dispatch.
func (o *Orchestrator) Results() <-chan events.Event { return o.results }

// Done is closed once Shutdown has started.
func (o *Orchestrator) Done() <-chan struct{} { return o.closeCh }

// OnMicPressed starts a pipeline when the orchestrator is idle and tells
// the user to wait otherwise. It never blocks.
func (o *Orchestrator) OnMicPressed() {
	if !o.session.IsRunning() {
		return
	}

	if o.state != StateIdle || o.session.listening || o.session.speaking {
		rejectedPresses.Add(o.baseContext, 1, metric.WithAttributes(attribute.String("state", o.state.String())))
		o.surface.SetStatusText(StatusBusy)
		return
	}

	pipelineID := uuid.New()
	o.pipelineID = pipelineID
	o.state = StateListening
	o.session.listening = true
	o.surface.SetMicEnabled(false)
	o.surface.SetMicIcon(MicIconOff)
	o.surface.SetStatusText(StatusListening)

	if !o.spawn("capture", pipelineID, o.runCaptureTask, o.captureTaskPanicked) {
		o.enterIdle()
	}
}

// PressMic queues a mic press for Run to handle on its loop. It is safe to
// call from any goroutine; a press is dropped while another is pending.
func (o *Orchestrator) PressMic() {
	select {
	case o.presses <- struct{}{}:
	default:
	}
}

// Dispatch applies a background result on the UI loop. Results from a
// pipeline other than the current one are dropped.
func (o *Orchestrator) Dispatch(event events.Event) {
	if event == nil || !o.session.IsRunning() {
		return
	}
	if event.PipelineID() != o.pipelineID || o.pipelineID == uuid.Nil {
		logger.Debug("dropping stale pipeline event",
			"kind", string(event.Kind()),
			"pipeline_id", event.PipelineID().String(),
			"current_pipeline_id", o.pipelineID.String())
		return
	}

	switch event := event.(type) {
	case events.CaptureSucceeded:
		if o.state == StateListening {
			o.handleCaptureSucceeded(event.Transcript())
		}
	case events.CaptureFailed:
		if o.state == StateListening {
			o.surface.SetStatusText(StatusNotCaught)
			o.enterIdle()
		}
	case events.CaptureProgress:
		if o.state == StateListening {
			if partial := strings.TrimSpace(event.Partial()); partial != "" {
				o.surface.SetStatusText("You: " + partial + "...")
			} else {
				o.surface.SetStatusText(StatusHearing)
			}
		}
	case events.CaptureEnded:
		if o.state == StateListening {
			o.enterIdle()
		}
	case events.GenerationSucceeded:
		if o.state == StateThinking {
			o.handleGenerationSucceeded(event.Response())
		}
	case events.GenerationFailed:
		if o.state == StateThinking {
			o.session.append(SpeakerAssistant, GenerationFallback)
			o.surface.SetStatusText(GenerationFallback)
			o.refreshTranscript()
			o.enterIdle()
		}
	case events.PlaybackEnded:
		if o.state == StateSpeaking {
			o.enterIdle()
		}
	default:
		log.Printf("Warning: unhandled event kind %q", event.Kind())
	}
}

// Run drains Results and queued mic presses until ctx is done or the
// orchestrator shuts down. Hosts with their own UI loop call Dispatch and
// OnMicPressed directly instead.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.closeCh:
			return
		case event := <-o.results:
			o.Dispatch(event)
		case <-o.presses:
			o.OnMicPressed()
		}
	}
}

// Shutdown stops accepting results, cancels running tasks and waits up to
// the join timeout for each of them. It returns how many tasks were left
// running. Calls after the first return 0.
func (o *Orchestrator) Shutdown() int {
	abandoned := 0
	o.closeOnce.Do(func() {
		o.session.running.Store(false)
		close(o.closeCh)
		o.cancel()

		abandoned = o.tasks.closeAndJoin(o.joinTimeout)
		if abandoned > 0 {
			log.Printf("Warning: %d task(s) still running after shutdown", abandoned)
		}
	})
	return abandoned
}

// OnPause and OnResume keep the session alive across host pauses.
func (o *Orchestrator) OnPause() bool  { return true }
func (o *Orchestrator) OnResume() bool { return true }

func (o *Orchestrator) OnStop() { o.Shutdown() }

func (o *Orchestrator) handleCaptureSucceeded(transcript string) {
	o.session.listening = false
	o.surface.SetStatusText("You: " + transcript)
	o.session.append(SpeakerUser, transcript)
	o.refreshTranscript()

	history := o.session.history
	prompt := buildPrompt(o.preamble, o.assistantName, lastN(history[:len(history)-1], o.maxHistory), transcript)

	o.state = StateThinking
	if !o.spawn("generation", o.pipelineID, func(ctx context.Context) error {
		return o.runGenerationTask(ctx, prompt)
	}, o.generationTaskPanicked) {
		o.enterIdle()
	}
}

func (o *Orchestrator) handleGenerationSucceeded(response string) {
	o.surface.SetStatusText(o.assistantName + ": " + response)
	o.session.append(SpeakerAssistant, response)
	o.refreshTranscript()

	o.state = StateSpeaking
	o.session.speaking = true
	if !o.spawn("playback", o.pipelineID, func(ctx context.Context) error {
		return o.runPlaybackTask(ctx, response)
	}, o.playbackTaskPanicked) {
		o.enterIdle()
	}
}

func (o *Orchestrator) enterIdle() {
	o.state = StateIdle
	o.pipelineID = uuid.Nil
	o.session.listening = false
	o.session.speaking = false
	o.surface.SetMicEnabled(true)
	o.surface.SetMicIcon(MicIconOn)
}

func (o *Orchestrator) refreshTranscript() {
	o.surface.SetTranscriptText(renderTranscript(o.assistantName, o.session.Recent(o.maxHistory)))
}

// schedule hands an event to the UI loop. Events produced after shutdown
// are dropped.
func (o *Orchestrator) schedule(event events.Event) bool {
	if !o.session.IsRunning() {
		return false
	}

	select {
	case <-o.closeCh:
		return false
	default:
	}

	select {
	case o.results <- event:
		return true
	case <-o.closeCh:
		return false
	}
}

// offer is schedule without waiting: the event is dropped when the result
// channel is full. Capture callbacks run on the transcription read loop and
// must not block.
func (o *Orchestrator) offer(event events.Event) bool {
	if !o.session.IsRunning() {
		return false
	}

	select {
	case <-o.closeCh:
		return false
	default:
	}

	select {
	case o.results <- event:
		return true
	default:
		return false
	}
}
