package stt

import (
	"context"
	"time"
)

// TranscriptEvent is one recognition result. Only events with IsFinal
// set reach the intent parser; partials are informational.
type TranscriptEvent struct {
	Text      string
	Language  string
	IsFinal   bool
	Timestamp time.Time
}

// Recognizer is the bring-your-own speech recognition boundary. The
// default deployment runs recognition client-side and feeds transcript
// frames straight into the session, so no in-process Recognizer is
// wired by default.
type Recognizer interface {
	Feed(ctx context.Context, pcm []byte) error
	Events() <-chan TranscriptEvent
	Close() error
}
