package events

import "github.com/google/uuid"

// KindPlaybackEnded identifies the end of reply playback.
const KindPlaybackEnded Kind = "playback.ended"

// PlaybackEnded closes a pipeline. Err is informational only.
type PlaybackEnded struct {
	Base
	err error
}

func NewPlaybackEnded(pipelineID uuid.UUID, err error) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded, pipelineID), err: err}
}

func (e PlaybackEnded) Err() error { return e.err }
