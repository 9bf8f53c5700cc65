package orchestration

import (
	"fmt"
	"strings"
)

const (
	DefaultAssistantName = "Kurt"
	DefaultCreator       = "Guka"
	DefaultMaxHistory    = 5
)

// DefaultPreamble is the persona text put in front of every prompt.
func DefaultPreamble(name, creator string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, an advanced AI assistant", name)
	if creator != "" {
		fmt.Fprintf(&sb, " created by %s", creator)
	}
	sb.WriteString(".\n")
	sb.WriteString(`Core capabilities:
- Provide detailed, accurate information
- Help with analysis and problem-solving
- Engage in meaningful conversations
- Remember context from our conversation
- Express personality while staying professional

Always maintain conversation context.
Be concise but thorough.
If you're unsure, admit it.
If something is beyond your capabilities, say so.`)
	return sb.String()
}

// buildPrompt renders the preamble, the exchanges before the latest
// utterance and the utterance itself, ending with the assistant's cue.
func buildPrompt(preamble, assistantName string, prior []Exchange, utterance string) string {
	var sb strings.Builder
	if preamble = strings.TrimSpace(preamble); preamble != "" {
		sb.WriteString(preamble)
		sb.WriteString("\n")
	}
	for _, exchange := range prior {
		writeExchange(&sb, "User", assistantName, exchange)
	}
	fmt.Fprintf(&sb, "User: %s\n%s:", utterance, assistantName)
	return sb.String()
}

// renderTranscript renders exchanges the way the chat history panel shows
// them.
func renderTranscript(assistantName string, exchanges []Exchange) string {
	var sb strings.Builder
	sb.WriteString(transcriptHeader)
	for _, exchange := range exchanges {
		writeExchange(&sb, userTranscriptPrefix, assistantName, exchange)
	}
	return sb.String()
}

func writeExchange(sb *strings.Builder, userLabel, assistantName string, exchange Exchange) {
	label := userLabel
	if exchange.Speaker == SpeakerAssistant {
		label = assistantName
	}
	fmt.Fprintf(sb, "%s: %s\n", label, exchange.Text)
}
