package events

import "github.com/google/uuid"

const (
	// KindCaptureSucceeded identifies a transcribed utterance.
	KindCaptureSucceeded Kind = "capture.succeeded"
	// KindCaptureFailed identifies a capture that produced no usable text.
	KindCaptureFailed Kind = "capture.failed"
	// KindCaptureEnded identifies the end of the capture stage.
	KindCaptureEnded Kind = "capture.ended"
	// KindCaptureProgress identifies detected speech or a partial transcript.
	KindCaptureProgress Kind = "capture.progress"
)

// CaptureProgress reports that speech was detected, or, with a non-empty
// partial, the words recognized so far.
type CaptureProgress struct {
	Base
	partial string
}

func NewCaptureProgress(pipelineID uuid.UUID, partial string) CaptureProgress {
	return CaptureProgress{Base: NewBase(KindCaptureProgress, pipelineID), partial: partial}
}

func (e CaptureProgress) Partial() string { return e.partial }

// CaptureSucceeded carries the recognized user text.
type CaptureSucceeded struct {
	Base
	transcript string
}

func NewCaptureSucceeded(pipelineID uuid.UUID, transcript string) CaptureSucceeded {
	return CaptureSucceeded{Base: NewBase(KindCaptureSucceeded, pipelineID), transcript: transcript}
}

func (e CaptureSucceeded) Transcript() string { return e.transcript }

// CaptureFailed carries the capture error.
type CaptureFailed struct {
	Base
	err error
}

func NewCaptureFailed(pipelineID uuid.UUID, err error) CaptureFailed {
	return CaptureFailed{Base: NewBase(KindCaptureFailed, pipelineID), err: err}
}

func (e CaptureFailed) Err() error { return e.err }

// CaptureEnded is emitted after the capture outcome, whatever it was.
type CaptureEnded struct{ Base }

func NewCaptureEnded(pipelineID uuid.UUID) CaptureEnded {
	return CaptureEnded{Base: NewBase(KindCaptureEnded, pipelineID)}
}
