package tui

import (
	orchestration "github.com/koscakluka/kurt/core"
)

var _ orchestration.Surface = (*Screen)(nil)

// Screen holds what the orchestrator last put on screen. It is only
// touched from the bubbletea update loop.
type Screen struct {
	status     string
	transcript string
	micEnabled bool
	micIcon    orchestration.MicIcon
}

func NewScreen() *Screen {
	return &Screen{micEnabled: true, micIcon: orchestration.MicIconOn}
}

func (s *Screen) SetStatusText(text string)             { s.status = text }
func (s *Screen) SetTranscriptText(text string)         { s.transcript = text }
func (s *Screen) SetMicEnabled(enabled bool)            { s.micEnabled = enabled }
func (s *Screen) SetMicIcon(icon orchestration.MicIcon) { s.micIcon = icon }
func (s *Screen) Status() string                        { return s.status }
func (s *Screen) Transcript() string                    { return s.transcript }
func (s *Screen) MicEnabled() bool                      { return s.micEnabled }
func (s *Screen) MicIcon() orchestration.MicIcon        { return s.micIcon }
