package miniaudio

import (
	"bytes"
	"testing"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/kurt/core/audio"
)

func TestFillPadsWithSilence(t *testing.T) {
	var q playQueue
	q.push([]byte{1, 2, 3})

	out := []byte{9, 9, 9, 9, 9}
	if played := q.fill(out); played != 3 {
		t.Fatalf("expected 3 bytes played, got %d", played)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 0, 0}) {
		t.Fatalf("expected audio followed by silence, got %v", out)
	}
	if q.buffered() != 0 {
		t.Fatalf("expected empty queue, got %d bytes", q.buffered())
	}
}

func TestMarkReleasedOnceQueuedAudioPlays(t *testing.T) {
	var q playQueue
	q.push(make([]byte, 6))
	first := q.mark()
	q.push(make([]byte, 4))
	second := q.mark()

	q.fill(make([]byte, 4))
	assertOpen(t, first, "first")

	q.fill(make([]byte, 4))
	assertClosed(t, first, "first")
	assertOpen(t, second, "second")

	q.fill(make([]byte, 4))
	assertClosed(t, second, "second")
}

func TestMarkOnEmptyQueueIsReleased(t *testing.T) {
	var q playQueue
	assertClosed(t, q.mark(), "empty")
}

func TestClearReleasesMarks(t *testing.T) {
	var q playQueue
	q.push(make([]byte, 100))
	mark := q.mark()

	q.clear()
	assertClosed(t, mark, "cleared")
	if q.buffered() != 0 {
		t.Fatalf("expected empty queue after clear, got %d bytes", q.buffered())
	}
}

func TestDeviceConfigs(t *testing.T) {
	mic := newDeviceConfig(malgo.Capture)
	if mic.SampleRate != audio.DefaultSampleRate || mic.Capture.Format != malgo.FormatS16 {
		t.Fatalf("expected 16kHz s16 capture, got %d %v", mic.SampleRate, mic.Capture.Format)
	}
	if mic.PeriodSizeInFrames != 320 {
		t.Fatalf("expected 20ms capture periods, got %d frames", mic.PeriodSizeInFrames)
	}

	out := newDeviceConfig(malgo.Playback)
	if out.Playback.Channels != audio.DefaultChannels || out.Playback.Format != malgo.FormatS16 {
		t.Fatalf("expected mono s16 playback, got %d %v", out.Playback.Channels, out.Playback.Format)
	}
}

func assertClosed(t *testing.T, ch <-chan struct{}, name string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected %s mark to be released", name)
	}
}

func assertOpen(t *testing.T, ch <-chan struct{}, name string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("expected %s mark to still be waiting", name)
	default:
	}
}
