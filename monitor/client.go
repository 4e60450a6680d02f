// Package monitor is a terminal listener for a running relay.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"node.town/relay/relay"
)

type transcriptionMsg relay.Transcription

type partialMsg string

type audioMsg int

type disconnectedMsg struct{ err error }

type Client struct {
	conn *websocket.Conn
}

// Dial connects to a relay as a listener.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay url: %w", err)
	}
	q := u.Query()
	if q.Get("role") == "" {
		q.Set("role", string(relay.RoleListener))
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u, err)
	}
	return &Client{conn: conn}, nil
}

// Run forwards every frame to msgs until the connection ends.
func (c *Client) Run(msgs chan<- tea.Msg) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			msgs <- disconnectedMsg{err}
			return
		}
		msg, err := decode(messageType, data)
		if err != nil {
			continue
		}
		msgs <- msg
	}
}

func (c *Client) Close() error {
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	return c.conn.Close()
}

func decode(messageType int, data []byte) (tea.Msg, error) {
	if messageType == websocket.BinaryMessage {
		return audioMsg(len(data)), nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch head.Type {
	case relay.TypeTranscription:
		var t relay.Transcription
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("invalid transcription: %w", err)
		}
		return transcriptionMsg(t), nil
	case relay.TypePartial:
		var p relay.Partial
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid partial: %w", err)
		}
		return partialMsg(p.Original), nil
	}
	return nil, fmt.Errorf("unknown frame type %q", head.Type)
}
