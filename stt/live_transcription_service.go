package stt

import (
	"context"
	"errors"
)

// ErrClosed is returned when audio is sent to a session whose upstream
// connection is gone.
var ErrClosed = errors.New("speech recognition session closed")

type Result struct {
	Text        string
	IsFinal     bool
	SpeechFinal bool
	Start       float64
	Duration    float64
	Confidence  float64
}

type SpeechRecognizer interface {
	SendAudio(data []byte) error
	Receive() <-chan Result
	IsOpen() bool
	// Stop is safe to call more than once.
	Stop() error
}

type SpeechRecognition interface {
	Start(ctx context.Context) (SpeechRecognizer, error)
}
