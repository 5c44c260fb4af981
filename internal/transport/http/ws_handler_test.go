package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/domain"
	"quiz-alarm-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestScheduler(hub *Hub) (*app.Scheduler, *memory.ConfigStore) {
	configs := memory.NewConfigStore()
	store := memory.NewQuestionStore([]domain.Question{{
		ID:            1,
		Exam:          domain.ExamGMAT,
		Type:          "quantitative",
		Subcategory:   "algebra",
		Text:          "What is $2 + 2$?",
		CorrectAnswer: "4",
		Choices:       []string{"3", "4", "5"},
		Difficulty:    "easy",
	}})
	provider := app.NewQuestionProvider(store, memory.NewQuestionCache(), time.Second, 10)
	state := memory.NewStateStore()
	snooze := memory.NewSnoozeTimer(nil)
	return app.NewScheduler(configs, provider, state, hub, hub, snooze, app.SchedulerOptions{}), configs
}

func TestWebSocketAlarmFlow(t *testing.T) {
	hub := NewHub()
	scheduler, _ := newTestScheduler(hub)
	wsHandler := NewWSHandler(scheduler, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the connection time to register with the hub and subscribe.
	time.Sleep(50 * time.Millisecond)

	if err := scheduler.TestFire(context.Background(), domain.AlarmConfig{
		ID:           7,
		Exam:         domain.ExamGMAT,
		QuestionType: "quantitative",
		Subcategory:  domain.AnySubcategory,
		Difficulty:   domain.AnyDifficulty,
		IsActive:     true,
	}); err != nil {
		t.Fatalf("test fire: %v", err)
	}

	triggered := awaitMessage(conn, t, "alarmTriggered")
	if triggered["alarmId"].(float64) != 7 {
		t.Fatalf("unexpected trigger payload %+v", triggered)
	}
	if triggered["question"] == nil {
		t.Fatalf("trigger carried no question")
	}

	// Wrong answer keeps the alarm ringing.
	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"alarmId": 7, "answer": "5"},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	result := awaitMessage(conn, t, "answerResult")
	if result["correct"].(bool) {
		t.Fatalf("wrong answer accepted")
	}

	// Correct answer dismisses.
	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"alarmId": 7, "answer": "4"},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	// answerResult and alarmDismissed travel on independent paths, so accept
	// them in either order.
	var resultSeen, dismissedSeen bool
	for i := 0; i < 8 && !(resultSeen && dismissedSeen); i++ {
		typ, payload := awaitAny(conn, t)
		switch typ {
		case "answerResult":
			if !payload["correct"].(bool) {
				t.Fatalf("correct answer rejected")
			}
			resultSeen = true
		case "alarmDismissed":
			if payload["alarmId"].(float64) != 7 {
				t.Fatalf("unexpected dismissal payload %+v", payload)
			}
			dismissedSeen = true
		}
	}
	if !resultSeen || !dismissedSeen {
		t.Fatalf("expected answerResult and alarmDismissed, got result=%v dismissed=%v", resultSeen, dismissedSeen)
	}
}

func TestWebSocketReplaysActiveAlarmOnConnect(t *testing.T) {
	hub := NewHub()
	scheduler, _ := newTestScheduler(hub)
	wsHandler := NewWSHandler(scheduler, hub)

	if err := scheduler.TestFire(context.Background(), domain.AlarmConfig{
		ID:           9,
		Exam:         domain.ExamGMAT,
		QuestionType: "quantitative",
		IsActive:     true,
	}); err != nil {
		t.Fatalf("test fire: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	replayed := awaitMessage(conn, t, "alarmTriggered")
	if replayed["alarmId"].(float64) != 9 {
		t.Fatalf("expected replay of alarm 9, got %+v", replayed)
	}
}

// awaitMessage reads frames until one of the wanted type arrives, skipping
// bridge command traffic (alert/haptic/notification).
func awaitMessage(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		typ, payload := awaitAny(conn, t)
		if typ == want {
			return payload
		}
	}
	t.Fatalf("timed out waiting for %s", want)
	return nil
}

// awaitAny reads the next non-error frame.
func awaitAny(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type == "error" {
		t.Fatalf("server error: %+v", msg.Payload)
	}
	return msg.Type, msg.Payload
}
