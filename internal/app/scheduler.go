package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-alarm-service/internal/domain"
)

// alarmPhase is the per-config trigger state machine. Claims move a config
// idle -> firing under the scheduler mutex, which is the sole guard against
// double-firing within a matching minute; the cooldown window additionally
// blocks re-triggering after dismissal inside the same minute.
type alarmPhase int

const (
	phaseIdle alarmPhase = iota
	phaseFiring
	phaseRinging
)

// SchedulerOptions tune timing behavior; zero values take defaults.
type SchedulerOptions struct {
	CoarseTick  time.Duration // default 10s
	FineTick    time.Duration // default 1s, used near a matching minute
	Cooldown    time.Duration // default 50s
	SnoozeDelay time.Duration // default 5m
	Clock       func() time.Time
}

// Scheduler owns alarm configs, the polling loop and every live alarm
// instance. All mutation funnels through its methods, which also perform the
// persistence writes.
type Scheduler struct {
	configs  ConfigStore
	provider *QuestionProvider
	state    StateStore
	alert    AlertBridge
	notify   NotificationBridge
	snooze   SnoozeScheduler

	coarseTick  time.Duration
	fineTick    time.Duration
	cooldown    time.Duration
	snoozeDelay time.Duration
	clock       func() time.Time

	mu            sync.Mutex
	active        map[int64]*domain.ActiveAlarm
	phase         map[int64]alarmPhase
	lastTriggered map[int64]time.Time
	generation    map[int64]uint64
	subscribers   map[chan Event]struct{}
}

func NewScheduler(configs ConfigStore, provider *QuestionProvider, state StateStore, alert AlertBridge, notify NotificationBridge, snooze SnoozeScheduler, opts SchedulerOptions) *Scheduler {
	if opts.CoarseTick <= 0 {
		opts.CoarseTick = 10 * time.Second
	}
	if opts.FineTick <= 0 {
		opts.FineTick = time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 50 * time.Second
	}
	if opts.SnoozeDelay <= 0 {
		opts.SnoozeDelay = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Scheduler{
		configs:       configs,
		provider:      provider,
		state:         state,
		alert:         alert,
		notify:        notify,
		snooze:        snooze,
		coarseTick:    opts.CoarseTick,
		fineTick:      opts.FineTick,
		cooldown:      opts.Cooldown,
		snoozeDelay:   opts.SnoozeDelay,
		clock:         opts.Clock,
		active:        make(map[int64]*domain.ActiveAlarm),
		phase:         make(map[int64]alarmPhase),
		lastTriggered: make(map[int64]time.Time),
		generation:    make(map[int64]uint64),
		subscribers:   make(map[chan Event]struct{}),
	}
}

// Run drives the polling loop until ctx is canceled. A single loop replaces
// the pair of independent interval timers the original client ran: the tick
// resolution is chosen per iteration, fine-grained only while the current
// minute matches some active config.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.Tick(ctx)
		interval := s.nextInterval(ctx)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Tick compares wall-clock time against every active config exactly once.
// Exported so tests can drive the scheduler with an injected clock.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock()
	cfgs, err := s.configs.List(ctx)
	if err != nil {
		log.Printf("scheduler: list alarm configs: %v", err)
		return
	}
	currentMinute := now.Hour()*60 + now.Minute()
	for _, cfg := range cfgs {
		if !cfg.IsActive || !cfg.MatchesWeekday(now.Weekday()) {
			continue
		}
		alarmMinute, err := domain.ParseAlarmTime(cfg.Time)
		if err != nil {
			log.Printf("scheduler: config %d has bad time %q", cfg.ID, cfg.Time)
			continue
		}
		if alarmMinute != currentMinute {
			continue
		}
		if !s.claim(cfg.ID, now) {
			continue
		}
		s.fire(ctx, cfg, now)
	}
}

func (s *Scheduler) nextInterval(ctx context.Context) time.Duration {
	cfgs, err := s.configs.List(ctx)
	if err != nil {
		return s.coarseTick
	}
	now := s.clock()
	currentMinute := now.Hour()*60 + now.Minute()
	for _, cfg := range cfgs {
		if !cfg.IsActive || !cfg.MatchesWeekday(now.Weekday()) {
			continue
		}
		if m, err := domain.ParseAlarmTime(cfg.Time); err == nil && m == currentMinute {
			return s.fineTick
		}
	}
	return s.coarseTick
}

// claim atomically moves a config idle -> firing. Returns false when the
// config is already firing/ringing or still inside the cooldown window.
func (s *Scheduler) claim(id int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase[id] != phaseIdle {
		return false
	}
	if last, ok := s.lastTriggered[id]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	s.phase[id] = phaseFiring
	s.generation[id]++
	s.lastTriggered[id] = now
	return true
}

// fire materializes an ActiveAlarm for a claimed config. Every step is
// best-effort; the alarm is never silently dropped.
func (s *Scheduler) fire(ctx context.Context, cfg domain.AlarmConfig, now time.Time) {
	s.mu.Lock()
	gen := s.generation[cfg.ID]
	s.mu.Unlock()

	s.startAlert(cfg.ID)
	s.pushNotification(ctx, cfg)

	question := s.provider.Resolve(ctx, cfg.Filter())
	if question == nil {
		if eq, ok := domain.EmergencyQuestion(cfg.Exam); ok {
			question = &eq
		} else {
			log.Printf("scheduler: no question available for alarm %d, ringing without one", cfg.ID)
		}
	}

	inst := &domain.ActiveAlarm{
		AlarmID:    cfg.ID,
		FiredAt:    now,
		AlarmTime:  cfg.Time,
		Question:   question,
		IsActive:   true,
		Generation: gen,
	}

	s.mu.Lock()
	// Discard if the alarm was dismissed while the question fetch was in
	// flight; a stale resolution must not resurrect the instance.
	if s.phase[cfg.ID] != phaseFiring || s.generation[cfg.ID] != gen {
		s.mu.Unlock()
		s.alert.StopAlert(cfg.ID)
		return
	}
	s.active[cfg.ID] = inst
	s.phase[cfg.ID] = phaseRinging
	s.mu.Unlock()

	if err := s.state.SaveActiveAlarm(ctx, *inst); err != nil {
		log.Printf("scheduler: persist active alarm %d: %v", cfg.ID, err)
	}
	s.publish(Event{Type: EventTriggered, Alarm: inst, AlarmID: cfg.ID})
}

// startAlert walks the tone -> clip -> vibrate fallback chain.
func (s *Scheduler) startAlert(alarmID int64) {
	if err := s.alert.PlayTone(alarmID); err == nil {
		return
	}
	if err := s.alert.PlayClip(alarmID); err == nil {
		return
	}
	if err := s.alert.Vibrate(alarmID); err != nil {
		log.Printf("scheduler: every alert mode failed for alarm %d: %v", alarmID, err)
	}
}

func (s *Scheduler) pushNotification(ctx context.Context, cfg domain.AlarmConfig) {
	granted, err := s.state.NotificationPermission(ctx)
	if err != nil || !granted {
		return
	}
	payload := domain.NotificationPayload{
		AlarmID:      cfg.ID,
		Exam:         cfg.Exam,
		QuestionType: cfg.QuestionType,
		Subcategory:  cfg.Subcategory,
		Difficulty:   cfg.Difficulty,
	}
	if err := s.notify.Notify(ctx, payload); err != nil {
		log.Printf("scheduler: notification for alarm %d: %v", cfg.ID, err)
	}
}

// SubmitAnswer validates an answer against the ringing instance's question.
// Matching is exact string equality, case- and whitespace-sensitive.
func (s *Scheduler) SubmitAnswer(ctx context.Context, alarmID int64, answer string) (bool, error) {
	s.mu.Lock()
	inst, ok := s.active[alarmID]
	s.mu.Unlock()
	if !ok {
		return false, domain.ErrAlarmNotRinging
	}

	correct := inst.Question != nil && answer == inst.Question.CorrectAnswer
	if inst.Question != nil {
		if err := s.state.RecordAnswer(ctx, inst.Question.Exam, inst.Question.Type, correct); err != nil {
			log.Printf("scheduler: record answer stats: %v", err)
		}
	}
	if !correct {
		s.alert.HapticPulse("medium")
		return false, nil
	}
	s.teardown(ctx, alarmID)
	return true, nil
}

// Dismiss tears down the instance without an answer. Idempotent: a second
// call for the same id is a no-op and emits nothing.
func (s *Scheduler) Dismiss(ctx context.Context, alarmID int64) {
	s.teardown(ctx, alarmID)
}

// Snooze re-raises a notification for the same question after the snooze
// delay and tears the current instance down.
func (s *Scheduler) Snooze(ctx context.Context, alarmID int64) error {
	s.mu.Lock()
	inst, ok := s.active[alarmID]
	s.mu.Unlock()
	if !ok {
		return domain.ErrAlarmNotRinging
	}

	cfg, err := s.configs.Get(ctx, alarmID)
	if err != nil {
		return err
	}
	payload := domain.NotificationPayload{
		AlarmID:      cfg.ID,
		Exam:         cfg.Exam,
		QuestionType: cfg.QuestionType,
		Subcategory:  cfg.Subcategory,
		Difficulty:   cfg.Difficulty,
	}
	if inst.Question != nil {
		payload.QuestionID = inst.Question.ID
	}
	if err := s.snooze.ScheduleSnooze(ctx, payload, s.snoozeDelay); err != nil {
		return err
	}
	s.teardown(ctx, alarmID)
	return nil
}

// teardown is the single dismissal path: it invalidates in-flight fires,
// stops alerts, removes the persisted snapshot and emits the dismissed
// signal. Safe to call when nothing is ringing.
func (s *Scheduler) teardown(ctx context.Context, alarmID int64) {
	s.mu.Lock()
	_, ringing := s.active[alarmID]
	firing := s.phase[alarmID] == phaseFiring
	delete(s.active, alarmID)
	s.phase[alarmID] = phaseIdle
	s.generation[alarmID]++
	s.mu.Unlock()

	if !ringing && !firing {
		return
	}

	s.alert.StopAlert(alarmID)
	if err := s.notify.Cancel(ctx, alarmID); err != nil {
		log.Printf("scheduler: cancel notification for alarm %d: %v", alarmID, err)
	}
	if err := s.state.DeleteActiveAlarm(ctx, alarmID); err != nil {
		log.Printf("scheduler: delete active alarm %d: %v", alarmID, err)
	}
	if ringing {
		s.publish(Event{Type: EventDismissed, AlarmID: alarmID})
	}
}

// Recover reloads persisted active alarms so an in-flight alarm survives a
// process restart.
func (s *Scheduler) Recover(ctx context.Context) error {
	insts, err := s.state.ListActiveAlarms(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range insts {
		inst := insts[i]
		s.active[inst.AlarmID] = &inst
		s.phase[inst.AlarmID] = phaseRinging
		if inst.Generation > s.generation[inst.AlarmID] {
			s.generation[inst.AlarmID] = inst.Generation
		}
	}
	return nil
}

// ActiveAlarms lists currently ringing instances for clients reconnecting
// after a reload.
func (s *Scheduler) ActiveAlarms() []domain.ActiveAlarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActiveAlarm, 0, len(s.active))
	for _, inst := range s.active {
		out = append(out, *inst)
	}
	return out
}

// Subscribe returns a channel of scheduler events. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *Scheduler) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Scheduler) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event rather than block the trigger path on a
			// slow subscriber.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
