package domain

import "time"

// Supported exam identifiers.
const (
	ExamGMAT = "GMAT"
	ExamLSAT = "LSAT"
)

// Filter sentinels: a config with these values matches any subcategory/difficulty.
const (
	AnySubcategory = "all"
	AnyDifficulty  = "any"
)

// AlarmConfig is a saved, possibly recurring, user-defined alarm with
// exam/question filters. IDs are derived from the creation timestamp
// (unix milliseconds) as in the original client.
type AlarmConfig struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name,omitempty"`
	Time         string  `json:"time"` // "HH:MM", 24-hour, zero-padded
	Days         [7]bool `json:"days"` // Sunday-first weekday mask
	Exam         string  `json:"exam"`
	QuestionType string  `json:"questionType"`
	Subcategory  string  `json:"subcategory"`
	Difficulty   string  `json:"difficulty"`
	IsActive     bool    `json:"isActive"`
}

// MatchesWeekday reports whether the config is scheduled for the given weekday.
func (c AlarmConfig) MatchesWeekday(d time.Weekday) bool {
	return c.Days[int(d)]
}

// Filter derives the question filter encoded in the config.
func (c AlarmConfig) Filter() QuestionFilter {
	return QuestionFilter{
		Exam:         c.Exam,
		QuestionType: c.QuestionType,
		Subcategory:  c.Subcategory,
		Difficulty:   c.Difficulty,
	}
}

// ActiveAlarm is the live, currently-firing occurrence of a configuration,
// bound to one concrete Question. Question is nil only when every source
// (store, cache, emergency set) failed; the alarm still rings.
type ActiveAlarm struct {
	AlarmID    int64     `json:"alarmId"`
	FiredAt    time.Time `json:"firedAt"`
	AlarmTime  string    `json:"alarmTime"` // original "HH:MM" preserved for display
	Question   *Question `json:"question,omitempty"`
	IsActive   bool      `json:"isActive"`
	Generation uint64    `json:"generation"`
}

// Question is an exam question unit. Text may embed $...$ math markup which
// is opaque to this service; the client renders it.
type Question struct {
	ID            int64     `json:"id"`
	Exam          string    `json:"exam"`
	Type          string    `json:"type"`
	Subcategory   string    `json:"subcategory"`
	Text          string    `json:"text"`
	CorrectAnswer string    `json:"correctAnswer"`
	Choices       []string  `json:"choices"`
	Difficulty    string    `json:"difficulty"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// QuestionFilter selects questions by exact field equality. Subcategory and
// Difficulty honor the sentinel values above. Empty fields match everything,
// which is what the widening fallback relies on.
type QuestionFilter struct {
	Exam         string `json:"exam"`
	QuestionType string `json:"questionType"`
	Subcategory  string `json:"subcategory"`
	Difficulty   string `json:"difficulty"`
}

// Matches applies the filter to a question.
func (f QuestionFilter) Matches(q Question) bool {
	if f.Exam != "" && q.Exam != f.Exam {
		return false
	}
	if f.QuestionType != "" && q.Type != f.QuestionType {
		return false
	}
	if f.Subcategory != "" && f.Subcategory != AnySubcategory && q.Subcategory != f.Subcategory {
		return false
	}
	if f.Difficulty != "" && f.Difficulty != AnyDifficulty && q.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// ExamStats accumulates answer outcomes for one (exam, question type) pair.
type ExamStats struct {
	Exam         string `json:"exam"`
	QuestionType string `json:"questionType"`
	Correct      int64  `json:"correct"`
	Total        int64  `json:"total"`
}

// NotificationPayload is the opaque payload attached to a scheduled native
// notification; it carries enough to rebuild the firing context on tap.
type NotificationPayload struct {
	AlarmID      int64  `json:"alarmId"`
	Exam         string `json:"exam"`
	QuestionType string `json:"questionType"`
	Subcategory  string `json:"subcategory"`
	Difficulty   string `json:"difficulty"`
	QuestionID   int64  `json:"questionId,omitempty"`
}
