package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeSnoozeAlarm = "alarm:snooze"

// SnoozeManager schedules delayed re-notifications through an asynq queue so
// a snoozed alarm comes back even across a process restart. Implements
// app.SnoozeScheduler.
type SnoozeManager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewSnoozeManager(redisAddr, redisPassword string, redisDB int) *SnoozeManager {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	}

	client := asynq.NewClient(redisOpt)
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("jobs: task %s failed: %v", task.Type(), err)
		}),
	})

	return &SnoozeManager{
		client: client,
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// RegisterHandlers wires the snooze task to the notification bridge.
func (m *SnoozeManager) RegisterHandlers(notify app.NotificationBridge) {
	m.mux.HandleFunc(TypeSnoozeAlarm, func(ctx context.Context, task *asynq.Task) error {
		var payload domain.NotificationPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal snooze payload: %w", err)
		}
		log.Printf("jobs: snooze elapsed for alarm %d", payload.AlarmID)
		return notify.Notify(ctx, payload)
	})
}

// Start runs the queue worker; it blocks until Stop is called.
func (m *SnoozeManager) Start() error {
	return m.server.Run(m.mux)
}

func (m *SnoozeManager) Stop() {
	m.server.Shutdown()
	_ = m.client.Close()
}

// ScheduleSnooze enqueues a delayed re-notification for the alarm.
func (m *SnoozeManager) ScheduleSnooze(ctx context.Context, payload domain.NotificationPayload, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal snooze payload: %w", err)
	}
	task := asynq.NewTask(TypeSnoozeAlarm, data)
	_, err = m.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(delay),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue snooze for alarm %d: %w", payload.AlarmID, err)
	}
	return nil
}
