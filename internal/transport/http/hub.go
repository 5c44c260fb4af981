package http

import (
	"context"
	"errors"
	"sync"

	"quiz-alarm-service/internal/domain"
)

// ErrNoDevice is returned when an alert command has no connected client to
// deliver to; the scheduler's fallback chain treats it like any other
// unavailable alert mode.
var ErrNoDevice = errors.New("no connected device")

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type alertCommand struct {
	Command string `json:"command"`
	AlarmID int64  `json:"alarmId,omitempty"`
}

type hapticCommand struct {
	Strength string `json:"strength"`
}

// Hub fans bridge commands out to every connected WebSocket client. It is
// the server half of the native alert/notification bridge: the client shell
// executes the commands (tone synthesis, clip playback, vibration, local
// notifications).
type Hub struct {
	mu    sync.Mutex
	conns map[chan outboundMessage]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[chan outboundMessage]struct{})}
}

func (h *Hub) register(ch chan outboundMessage) func() {
	h.mu.Lock()
	h.conns[ch] = struct{}{}
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.conns, ch)
		h.mu.Unlock()
	}
}

// broadcast delivers to every connection, dropping the oldest queued message
// per slow connection rather than blocking.
func (h *Hub) broadcast(msg outboundMessage) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.conns {
		select {
		case ch <- msg:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- msg
		}
	}
	return len(h.conns)
}

// app.AlertBridge implementation.

func (h *Hub) PlayTone(alarmID int64) error {
	return h.sendAlert("tone", alarmID)
}

func (h *Hub) PlayClip(alarmID int64) error {
	return h.sendAlert("clip", alarmID)
}

func (h *Hub) Vibrate(alarmID int64) error {
	return h.sendAlert("vibrate", alarmID)
}

func (h *Hub) StopAlert(alarmID int64) {
	h.broadcast(outboundMessage{Type: "alert", Payload: alertCommand{Command: "stop", AlarmID: alarmID}})
}

func (h *Hub) HapticPulse(strength string) {
	h.broadcast(outboundMessage{Type: "haptic", Payload: hapticCommand{Strength: strength}})
}

func (h *Hub) sendAlert(command string, alarmID int64) error {
	if h.broadcast(outboundMessage{Type: "alert", Payload: alertCommand{Command: command, AlarmID: alarmID}}) == 0 {
		return ErrNoDevice
	}
	return nil
}

// app.NotificationBridge implementation: notifications ride the same socket
// and the client shell hands them to the platform notification center.

func (h *Hub) Notify(_ context.Context, payload domain.NotificationPayload) error {
	if h.broadcast(outboundMessage{Type: "notification", Payload: payload}) == 0 {
		return ErrNoDevice
	}
	return nil
}

func (h *Hub) Cancel(_ context.Context, alarmID int64) error {
	h.broadcast(outboundMessage{Type: "notificationCancel", Payload: alertCommand{AlarmID: alarmID}})
	return nil
}
