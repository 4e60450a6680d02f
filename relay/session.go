package relay

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"node.town/relay/stt"
	"node.town/relay/tts"
)

// Translator returns the target-language text for a final transcript, or
// "" when no translation is available.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Pipeline turns final transcripts into broadcasts. It is shared by every
// session of a server.
type Pipeline struct {
	translator Translator
	speech     tts.SpeechGenerator
	dispatcher *Dispatcher
	logger     *log.Logger
	partials   bool
}

// Process translates one utterance and broadcasts its text frame, then its
// audio frame if there is a translation to speak.
func (p *Pipeline) Process(ctx context.Context, original string) {
	translation := p.translator.Translate(ctx, original)

	if _, err := p.dispatcher.BroadcastText(NewTranscription(original, translation)); err != nil {
		p.logger.Error("failed to broadcast transcription", "error", err)
		return
	}

	if translation == "" {
		p.logger.Warn("no translation", "txt", original)
		return
	}

	audio, err := p.speech.TextToSpeech(ctx, translation)
	if err != nil {
		p.logger.Error("speech synthesis failed", "error", err)
		return
	}

	n := p.dispatcher.BroadcastBinary(audio)
	p.logger.Info("talk", "txt", translation, "bytes", len(audio), "peers", n)
}

func (p *Pipeline) partial(text string) {
	if !p.partials {
		return
	}
	if _, err := p.dispatcher.BroadcastText(NewPartial(text)); err != nil {
		p.logger.Error("failed to broadcast partial", "error", err)
	}
}

// Session bridges one peer's audio into its recognizer and the recognizer's
// final results into the pipeline.
type Session struct {
	ctx        context.Context
	peer       *Peer
	recognizer stt.SpeechRecognizer
	pipeline   *Pipeline
	logger     *log.Logger

	queue     chan string
	done      chan struct{}
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

func newSession(
	ctx context.Context,
	peer *Peer,
	recognizer stt.SpeechRecognizer,
	pipeline *Pipeline,
	sequential bool,
	logger *log.Logger,
) *Session {
	s := &Session{
		ctx:        ctx,
		peer:       peer,
		recognizer: recognizer,
		pipeline:   pipeline,
		logger:     logger,
		done:       make(chan struct{}),
	}
	if sequential {
		s.queue = make(chan string, 32)
	}
	return s
}

func (s *Session) start() {
	if s.recognizer == nil {
		close(s.done)
		return
	}
	if s.queue != nil {
		s.inflight.Add(1)
		go s.work()
	}
	go s.receive()
}

func (s *Session) receive() {
	defer close(s.done)
	if s.queue != nil {
		defer close(s.queue)
	}

	for result := range s.recognizer.Receive() {
		if !result.IsFinal {
			s.pipeline.partial(result.Text)
			continue
		}

		if s.queue != nil {
			s.queue <- result.Text
			continue
		}

		s.inflight.Add(1)
		go func(text string) {
			defer s.inflight.Done()
			s.pipeline.Process(s.ctx, text)
		}(result.Text)
	}

	s.logger.Debug("recognition ended", "peer", s.peer.ID())
}

func (s *Session) work() {
	defer s.inflight.Done()
	for text := range s.queue {
		s.pipeline.Process(s.ctx, text)
	}
}

// wait blocks until the recognizer's results are drained and every
// utterance they started has been broadcast.
func (s *Session) wait() {
	<-s.done
	s.inflight.Wait()
}

// HandleAudio forwards one inbound binary frame to the recognizer.
func (s *Session) HandleAudio(data []byte) {
	s.peer.markSource()

	if s.recognizer == nil {
		s.logger.Debug("dropping audio from listener", "peer", s.peer.ID())
		return
	}
	if !s.recognizer.IsOpen() {
		return
	}
	if err := s.recognizer.SendAudio(data); err != nil {
		s.logger.Warn("failed to forward audio", "peer", s.peer.ID(), "error", err)
	}
}

// Close stops the recognizer. Translations already underway still finish
// and broadcast.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.recognizer == nil {
			return
		}
		if err := s.recognizer.Stop(); err != nil {
			s.logger.Warn("failed to stop recognizer", "peer", s.peer.ID(), "error", err)
		}
	})
}
