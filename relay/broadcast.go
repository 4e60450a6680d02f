package relay

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

type Dispatcher struct {
	registry *Registry
	logger   *log.Logger
}

func NewDispatcher(registry *Registry, logger *log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// BroadcastText encodes v as JSON and sends it as a text frame to every
// open member. It returns the number of members that received it.
func (d *Dispatcher) BroadcastText(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to encode frame: %w", err)
	}
	return d.broadcast(websocket.TextMessage, data), nil
}

func (d *Dispatcher) BroadcastBinary(data []byte) int {
	return d.broadcast(websocket.BinaryMessage, data)
}

func (d *Dispatcher) broadcast(messageType int, data []byte) int {
	delivered := 0
	for _, m := range d.registry.Snapshot() {
		if !m.Open() {
			d.registry.Remove(m.ID())
			continue
		}
		if err := m.Send(messageType, data); err != nil {
			d.logger.Warn("send failed, dropping peer", "peer", m.ID(), "error", err)
			// The close frame may wait on the same stuck socket, so it
			// must not hold up the members after this one.
			d.registry.Remove(m.ID())
			go m.Close()
			continue
		}
		delivered++
	}
	d.logger.Debug("broadcast", "type", messageType, "bytes", len(data), "peers", delivered)
	return delivered
}
