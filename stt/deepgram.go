package stt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
)

type Options struct {
	Model       string
	Language    string
	Encoding    string
	SampleRate  int
	Channels    int
	Endpointing int // milliseconds of silence that end an utterance
}

func DefaultOptions() Options {
	return Options{
		Model:       "nova-2",
		Language:    "es",
		Endpointing: 300,
	}
}

type DeepgramClient struct {
	token   string
	options Options
	logger  *log.Logger
}

// ErrMissingKey is returned by Start when no API key was configured.
var ErrMissingKey = errors.New("missing deepgram API key")

func NewDeepgramClient(
	token string,
	options Options,
	logger *log.Logger,
) *DeepgramClient {
	return &DeepgramClient{
		token:   token,
		options: options,
		logger:  logger,
	}
}

func (c *DeepgramClient) transcriptionOptions() *interfaces.LiveTranscriptionOptions {
	o := c.options
	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          o.Model,
		Language:       o.Language,
		Punctuate:      true,
		SmartFormat:    true,
		InterimResults: true,
		Endpointing:    strconv.Itoa(o.Endpointing),
	}
	// Left empty, Deepgram sniffs containerized audio such as WebM/Opus
	// from a browser MediaRecorder.
	if o.Encoding != "" {
		tOptions.Encoding = o.Encoding
		tOptions.SampleRate = o.SampleRate
		tOptions.Channels = o.Channels
	}
	return tOptions
}

// Start opens the upstream websocket and only returns once it is connected,
// so a bad key or config fails here rather than on the first audio chunk.
func (c *DeepgramClient) Start(
	ctx context.Context,
) (SpeechRecognizer, error) {
	if c.token == "" {
		return nil, ErrMissingKey
	}

	cOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}

	session := newDeepgramSession(c.logger)

	client, err := listen.NewWebSocket(
		ctx,
		c.token,
		cOptions,
		c.transcriptionOptions(),
		session,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"error creating LiveTranscription connection: %w",
			err,
		)
	}

	session.client = client

	if !client.Connect() {
		session.shutdown()
		return nil, fmt.Errorf("failed to connect to deepgram")
	}

	go session.writeAudio()

	return session, nil
}

type DeepgramSession struct {
	client      *listen.WebSocketClient
	logger      *log.Logger
	results     chan Result
	audioBuffer chan []byte

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func newDeepgramSession(logger *log.Logger) *DeepgramSession {
	return &DeepgramSession{
		logger:      logger,
		results:     make(chan Result, 64),
		audioBuffer: make(chan []byte, 100),
	}
}

func (s *DeepgramSession) Stop() error {
	s.once.Do(func() {
		s.shutdown()
		if s.client != nil {
			s.client.Stop()
		}
	})
	return nil
}

// shutdown closes the local channels exactly once, whichever side ends the
// session first.
func (s *DeepgramSession) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.results)
	close(s.audioBuffer)
}

func (s *DeepgramSession) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *DeepgramSession) SendAudio(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.audioBuffer <- data:
		return nil
	default:
		return fmt.Errorf("audio buffer full")
	}
}

func (s *DeepgramSession) writeAudio() {
	for data := range s.audioBuffer {
		if err := s.client.WriteBinary(data); err != nil {
			s.logger.Error("failed to write audio data", "error", err)
		}
	}
}

func (s *DeepgramSession) Receive() <-chan Result {
	return s.results
}

// emit never blocks: the SDK calls Message from its read loop.
func (s *DeepgramSession) emit(result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.results <- result:
	default:
		s.logger.Warn("result buffer full, dropping", "final", result.IsFinal, "txt", result.Text)
	}
}

func (s *DeepgramSession) Message(mr *api.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}

	transcript := strings.TrimSpace(mr.Channel.Alternatives[0].Transcript)

	if len(transcript) == 0 {
		return nil
	}

	if mr.IsFinal {
		s.logger.Info("hear", "txt", transcript, "start", mr.Start, "duration", mr.Duration)
	} else {
		s.logger.Debug("hear", "tmp", transcript)
	}

	s.emit(Result{
		Text:        transcript,
		IsFinal:     mr.IsFinal,
		SpeechFinal: mr.SpeechFinal,
		Start:       mr.Start,
		Duration:    mr.Duration,
		Confidence:  mr.Channel.Alternatives[0].Confidence,
	})

	return nil
}

func (s *DeepgramSession) Open(ocr *api.OpenResponse) error {
	s.logger.Info("open", "kind", "deepgram")
	return nil
}

func (s *DeepgramSession) Close(ocr *api.CloseResponse) error {
	s.logger.Info("closed", "reason", ocr.Type)
	s.shutdown()
	return nil
}

func (s *DeepgramSession) Metadata(md *api.MetadataResponse) error {
	s.logger.Debug("metadata", "request", md.RequestID)
	return nil
}

func (s *DeepgramSession) SpeechStarted(
	ssr *api.SpeechStartedResponse,
) error {
	s.logger.Debug("speech start", "timestamp", ssr.Timestamp)
	return nil
}

func (s *DeepgramSession) UtteranceEnd(ur *api.UtteranceEndResponse) error {
	s.logger.Debug("utterance end", "timestamp", ur.LastWordEnd)
	return nil
}

func (s *DeepgramSession) Error(er *api.ErrorResponse) error {
	s.logger.Error("error", "type", er.Type, "description", er.Description)
	return nil
}

func (s *DeepgramSession) UnhandledEvent(byData []byte) error {
	s.logger.Warn("unhandled event", "data", string(byData))
	return nil
}
