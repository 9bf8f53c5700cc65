// Command kurt runs the Kurt voice assistant.
//
// Usage:
//
//	kurt [--config path] [--plain] [--no-speech] [--log-file path]
//	kurt doctor
//	kurt config show|schema
//
// API keys are read from the environment or a .env file in the working
// directory: DEEPGRAM_API_KEY for speech, GEMINI_API_KEY (or
// GOOGLE_API_KEY) or OPENAI_API_KEY for replies.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
