package orchestration

type MicIcon string

const (
	MicIconOn  MicIcon = "microphone"
	MicIconOff MicIcon = "microphone-off"
)

const (
	StatusReady          = "Press microphone to speak"
	StatusListening      = "Listening..."
	StatusHearing        = "Listening... go on"
	StatusNotCaught      = "Sorry, I didn't catch that"
	StatusBusy           = "Please wait until current operation completes"
	GenerationFallback   = "Sorry, I couldn't process that request."
	transcriptHeader     = "Chat History:\n"
	userTranscriptPrefix = "You"
)

// Surface is what the orchestrator drives on screen. All calls happen on
// the UI loop.
type Surface interface {
	SetStatusText(text string)
	SetTranscriptText(text string)
	SetMicEnabled(enabled bool)
	SetMicIcon(icon MicIcon)
}

type noopSurface struct{}

func (noopSurface) SetStatusText(string)     {}
func (noopSurface) SetTranscriptText(string) {}
func (noopSurface) SetMicEnabled(bool)       {}
func (noopSurface) SetMicIcon(MicIcon)       {}
