package texttospeech

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPlaybackErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("speak: %w", NewPlaybackError(cause))

	if !errors.Is(err, ErrPlayback) {
		t.Fatalf("expected playback sentinel to match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to match")
	}
}

func TestNewPlaybackErrorDoesNotDoubleWrap(t *testing.T) {
	inner := NewPlaybackError(context.Canceled)
	outer := NewPlaybackError(inner)

	if outer != inner {
		t.Fatalf("expected existing playback error to be returned as is")
	}
	if outer.Error() != "speech playback failed: context canceled" {
		t.Fatalf("unexpected message %q", outer.Error())
	}
}
