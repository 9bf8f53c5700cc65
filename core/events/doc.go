// Package events defines the typed results background stages hand back to
// the UI loop.
//
// Event kinds are grouped by stage:
//
//   - capture.*
//   - generation.*
//   - playback.*
//
// Every event carries the ID of the pipeline that produced it. A pipeline
// starts with an accepted mic press and ends when the orchestrator returns
// to idle; events from an older pipeline are stale and get dropped.
//
// capture events
//
//   - CaptureProgress (capture.progress): speech detected or partial words
//     while listening. Best effort; may be dropped when results back up.
//   - CaptureSucceeded (capture.succeeded): the user's words.
//   - CaptureFailed (capture.failed): no speech, unintelligible speech, or a
//     device failure.
//   - CaptureEnded (capture.ended): always follows one of the above.
//
// generation events
//
//   - GenerationSucceeded (generation.succeeded): the assistant's reply.
//   - GenerationFailed (generation.failed): network, quota or unknown error.
//
// playback events
//
//   - PlaybackEnded (playback.ended): playback finished, with or without an
//     error.
package events
