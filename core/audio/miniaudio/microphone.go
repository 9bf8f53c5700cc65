package miniaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type microphone struct {
	mu     sync.Mutex
	device *malgo.Device

	handlerMu sync.RWMutex
	onAudio   func([]byte)
}

func (m *microphone) open(audioContext *malgo.AllocatedContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameSize := bytesPerFrame()
	device, err := malgo.InitDevice(audioContext.Context, newDeviceConfig(malgo.Capture), malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			n := int(frameCount) * frameSize
			if n == 0 || len(input) < n {
				return
			}

			m.handlerMu.RLock()
			onAudio := m.onAudio
			m.handlerMu.RUnlock()
			if onAudio == nil {
				return
			}
			// the input buffer is reused after the callback returns
			onAudio(append([]byte(nil), input[:n]...))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}
	m.device = device
	return nil
}

func (m *microphone) start(onAudio func([]byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return errors.New("microphone not open")
	}

	m.setHandler(onAudio)
	if m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		m.setHandler(nil)
		return fmt.Errorf("failed to start microphone: %w", err)
	}
	return nil
}

func (m *microphone) stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setHandler(nil)
	if m.device == nil || !m.device.IsStarted() {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop microphone: %w", err)
	}
	return nil
}

func (m *microphone) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setHandler(nil)
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
}

func (m *microphone) setHandler(onAudio func([]byte)) {
	m.handlerMu.Lock()
	m.onAudio = onAudio
	m.handlerMu.Unlock()
}
