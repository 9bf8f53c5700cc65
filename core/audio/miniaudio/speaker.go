package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type speaker struct {
	mu     sync.Mutex
	device *malgo.Device
	queue  playQueue
}

func (s *speaker) open(audioContext *malgo.AllocatedContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameSize := bytesPerFrame()
	device, err := malgo.InitDevice(audioContext.Context, newDeviceConfig(malgo.Playback), malgo.DeviceCallbacks{
		Data: func(output, _ []byte, frameCount uint32) {
			n := min(int(frameCount)*frameSize, len(output))
			s.queue.fill(output[:n])
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start speaker: %w", err)
	}
	s.device = device
	return nil
}

func (s *speaker) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device != nil && s.device.IsStarted()
}

func (s *speaker) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	s.queue.clear()
}
