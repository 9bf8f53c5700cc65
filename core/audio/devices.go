package audio

import "context"

// Source is a microphone that pushes captured frames to a callback until
// capture is stopped.
type Source interface {
	EncodingInfo() EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// Sink is a speaker that queues audio for playback.
type Sink interface {
	EncodingInfo() EncodingInfo
	SendAudio(audio []byte) error
	// AwaitMark blocks until all audio queued before the call has been
	// played.
	AwaitMark() error
	ClearBuffer()
}
