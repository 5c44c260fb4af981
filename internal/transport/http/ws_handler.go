package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler is the UI-layer collaborator: it streams alarmTriggered and
// alarmDismissed signals (plus bridge commands via the hub) and accepts
// answer/dismiss/snooze messages.
type WSHandler struct {
	scheduler *app.Scheduler
	hub       *Hub
	upgrader  websocket.Upgrader
}

func NewWSHandler(scheduler *app.Scheduler, hub *Hub) *WSHandler {
	return &WSHandler{
		scheduler: scheduler,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type alarmActionPayload struct {
	AlarmID int64  `json:"alarmId"`
	Answer  string `json:"answer,omitempty"`
}

type answerResultPayload struct {
	AlarmID int64 `json:"alarmId"`
	Correct bool  `json:"correct"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into the scheduler's
// event stream and the bridge hub.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	unregister := h.hub.register(send)
	defer unregister()

	events, cancel := h.scheduler.Subscribe()
	defer cancel()

	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// A client reconnecting after a reload needs any in-flight alarm replayed.
	for _, inst := range h.scheduler.ActiveAlarms() {
		alarm := inst
		send <- outboundMessage{Type: string(app.EventTriggered), Payload: &alarm}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var payload alarmActionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
			continue
		}
		switch inbound.Type {
		case "answer":
			correct, err := h.scheduler.SubmitAnswer(r.Context(), payload.AlarmID, payload.Answer)
			if err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage{Type: "answerResult", Payload: answerResultPayload{AlarmID: payload.AlarmID, Correct: correct}}
		case "dismiss":
			h.scheduler.Dismiss(r.Context(), payload.AlarmID)
		case "snooze":
			if err := h.scheduler.Snooze(r.Context(), payload.AlarmID); err != nil && !errors.Is(err, domain.ErrAlarmNotRinging) {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func eventMessage(ev app.Event) outboundMessage {
	if ev.Type == app.EventTriggered {
		return outboundMessage{Type: string(ev.Type), Payload: ev.Alarm}
	}
	return outboundMessage{Type: string(ev.Type), Payload: alarmActionPayload{AlarmID: ev.AlarmID}}
}
