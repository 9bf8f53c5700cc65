// Package miniaudio opens the default microphone and speaker through
// miniaudio. It is the default audio backend.
package miniaudio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/kurt/core/audio"
)

const (
	format = malgo.FormatS16
	// micPeriodFrames is 20ms at 16kHz, the frame size streamed to speech
	// recognition.
	micPeriodFrames     = audio.DefaultSampleRate / 50
	speakerPeriodFrames = audio.DefaultSampleRate / 10
)

var (
	_ audio.Source = (*Device)(nil)
	_ audio.Sink   = (*Device)(nil)
)

// Device is the microphone and speaker pair used by the assistant. The
// speaker runs for the lifetime of the device and plays silence while its
// queue is empty; the microphone only runs while capturing.
type Device struct {
	audioContext *malgo.AllocatedContext
	mic          microphone
	speaker      speaker
}

func NewDevice() (*Device, error) {
	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	d := &Device{audioContext: audioContext}
	if err := d.speaker.open(audioContext); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.mic.open(audioContext); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (d *Device) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return d.mic.start(onAudio)
}

func (d *Device) StopCapture() error { return d.mic.stop() }

func (d *Device) SendAudio(data []byte) error {
	if !d.speaker.running() {
		return errors.New("speaker not running")
	}
	d.speaker.queue.push(data)
	return nil
}

func (d *Device) AwaitMark() error {
	if !d.speaker.running() {
		return errors.New("speaker not running")
	}
	<-d.speaker.queue.mark()
	return nil
}

func (d *Device) ClearBuffer() { d.speaker.queue.clear() }

// Close releases both devices and the audio context.
func (d *Device) Close() {
	d.mic.close()
	d.speaker.close()
	if d.audioContext != nil {
		_ = d.audioContext.Uninit()
		d.audioContext.Free()
		d.audioContext = nil
	}
}

func newDeviceConfig(kind malgo.DeviceType) malgo.DeviceConfig {
	config := malgo.DefaultDeviceConfig(kind)
	config.SampleRate = audio.DefaultSampleRate
	config.Alsa.NoMMap = 1

	switch kind {
	case malgo.Capture:
		config.Capture.Format = format
		config.Capture.Channels = audio.DefaultChannels
		config.PerformanceProfile = malgo.LowLatency
		config.PeriodSizeInFrames = micPeriodFrames
		config.Periods = 3
	case malgo.Playback:
		config.Playback.Format = format
		config.Playback.Channels = audio.DefaultChannels
		config.PeriodSizeInFrames = speakerPeriodFrames
		config.Periods = 4
	}
	return config
}

func bytesPerFrame() int {
	return malgo.SampleSizeInBytes(format) * audio.DefaultChannels
}
