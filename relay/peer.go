package relay

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errPeerClosed = errors.New("peer closed")

type Role string

const (
	RoleUnknown  Role = ""
	RoleSource   Role = "source"
	RoleListener Role = "listener"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSource, RoleListener:
		return Role(s)
	}
	return RoleUnknown
}

// Peer is one connected websocket client. Writes are serialized since
// gorilla/websocket supports a single concurrent writer.
type Peer struct {
	id           string
	conn         *websocket.Conn
	declared     Role
	writeTimeout time.Duration

	mu        sync.Mutex
	closed    atomic.Bool
	sentAudio atomic.Bool
	closeOnce sync.Once
}

func NewPeer(conn *websocket.Conn, declared Role, writeTimeout time.Duration) *Peer {
	return &Peer{
		id:           uuid.NewString(),
		conn:         conn,
		declared:     declared,
		writeTimeout: writeTimeout,
	}
}

func (p *Peer) ID() string {
	return p.id
}

// Role is the declared role if the client sent one, otherwise whether the
// peer has streamed any audio yet.
func (p *Peer) Role() Role {
	if p.declared != RoleUnknown {
		return p.declared
	}
	if p.sentAudio.Load() {
		return RoleSource
	}
	return RoleListener
}

func (p *Peer) Declared() Role {
	return p.declared
}

func (p *Peer) markSource() {
	p.sentAudio.Store(true)
}

func (p *Peer) Open() bool {
	return !p.closed.Load()
}

func (p *Peer) Send(messageType int, data []byte) error {
	if p.closed.Load() {
		return errPeerClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeTimeout > 0 {
		p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}
	return p.conn.WriteMessage(messageType, data)
}

func (p *Peer) Close() error {
	return p.CloseWith(websocket.CloseNormalClosure, "")
}

// CloseWith sends a close frame with the given code and closes the
// underlying connection. Only the first call has any effect.
func (p *Peer) CloseWith(code int, reason string) error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)

		p.mu.Lock()
		p.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		p.mu.Unlock()

		err = p.conn.Close()
	})
	return err
}
