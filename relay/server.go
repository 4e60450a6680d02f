package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"node.town/relay/stt"
	"node.town/relay/tts"
)

type Options struct {
	BroadcastPartials bool          `mapstructure:"broadcast_partials"`
	RequireSourceRole bool          `mapstructure:"require_source_role"`
	Sequential        bool          `mapstructure:"sequential"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

func DefaultOptions() Options {
	return Options{WriteTimeout: 10 * time.Second}
}

// Server owns the connection registry and accepts relay websockets.
type Server struct {
	recognition stt.SpeechRecognition
	registry    *Registry
	dispatcher  *Dispatcher
	pipeline    *Pipeline
	options     Options
	logger      *log.Logger
	upgrader    websocket.Upgrader

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closing  bool
	handlers sync.WaitGroup
}

func NewServer(
	recognition stt.SpeechRecognition,
	translator Translator,
	speech tts.SpeechGenerator,
	options Options,
	logger *log.Logger,
) *Server {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, logger)
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		recognition: recognition,
		registry:    registry,
		dispatcher:  dispatcher,
		pipeline: &Pipeline{
			translator: translator,
			speech:     speech,
			dispatcher: dispatcher,
			logger:     logger,
			partials:   options.BroadcastPartials,
		},
		options: options,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) Peers() int {
	return s.registry.Len()
}

func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.handlers.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	peer := NewPeer(conn, ParseRole(r.URL.Query().Get("role")), s.options.WriteTimeout)
	s.handle(peer)
}

func (s *Server) handle(peer *Peer) {
	logger := s.logger.With("peer", peer.ID())

	s.registry.Add(peer)
	logger.Info("connected", "role", peer.Declared(), "peers", s.registry.Len())

	// Close may have taken its snapshot before this peer was registered.
	if s.isClosing() {
		s.registry.Remove(peer.ID())
		peer.CloseWith(websocket.CloseGoingAway, "server shutting down")
		return
	}

	var recognizer stt.SpeechRecognizer
	if !s.options.RequireSourceRole || peer.Declared() == RoleSource {
		var err error
		recognizer, err = s.recognition.Start(s.ctx)
		if err != nil {
			logger.Error("speech recognition unavailable", "error", err)
			s.registry.Remove(peer.ID())
			peer.CloseWith(websocket.CloseInternalServerErr, "speech recognition unavailable")
			return
		}
	}

	session := newSession(s.ctx, peer, recognizer, s.pipeline, s.options.Sequential, logger)
	session.start()

	s.read(peer, session, logger)

	s.registry.Remove(peer.ID())
	peer.Close()
	session.Close()
	session.wait()

	logger.Info("disconnected", "role", peer.Role(), "peers", s.registry.Len())
}

// read forwards binary frames until the connection ends. Text frames carry
// no commands and are ignored.
func (s *Server) read(peer *Peer, session *Session, logger *log.Logger) {
	for {
		messageType, data, err := peer.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) && peer.Open() {
				logger.Warn("read failed", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		session.HandleAudio(data)
	}
}

// admit registers a handler unless the server is shutting down. Adding under
// the same lock Close takes keeps handlers.Add from racing handlers.Wait.
func (s *Server) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.handlers.Add(1)
	return true
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Close disconnects every peer, then waits for utterances still being
// translated or spoken unless ctx expires first. Each handler returns only
// after its session's utterances are broadcast.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	for _, m := range s.registry.Snapshot() {
		if p, ok := m.(*Peer); ok {
			p.CloseWith(websocket.CloseGoingAway, "server shutting down")
			continue
		}
		m.Close()
	}

	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()

	defer s.cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
