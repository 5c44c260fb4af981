package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// APIHandler is the REST surface: alarm CRUD, question authoring, exam
// preference, stats and the immediate test-fire.
type APIHandler struct {
	scheduler *app.Scheduler
	questions *app.QuestionService
	validate  *validator.Validate
}

func NewAPIHandler(scheduler *app.Scheduler, questions *app.QuestionService) *APIHandler {
	return &APIHandler{
		scheduler: scheduler,
		questions: questions,
		validate:  validator.New(),
	}
}

func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/alarms", func(r chi.Router) {
		r.Get("/", h.listAlarms)
		r.Post("/", h.createAlarm)
		r.Get("/active", h.listActiveAlarms)
		r.Post("/test", h.testAlarm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getAlarm)
			r.Put("/", h.updateAlarm)
			r.Delete("/", h.deleteAlarm)
			r.Post("/toggle", h.toggleAlarm)
			r.Post("/answer", h.answerAlarm)
			r.Post("/dismiss", h.dismissAlarm)
			r.Post("/snooze", h.snoozeAlarm)
		})
	})
	r.Route("/questions", func(r chi.Router) {
		r.Get("/", h.listQuestions)
		r.Post("/", h.createQuestion)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getQuestion)
			r.Put("/", h.updateQuestion)
			r.Delete("/", h.deleteQuestion)
		})
	})
	r.Get("/preferences/exam", h.getExamPreference)
	r.Put("/preferences/exam", h.setExamPreference)
	r.Put("/notifications/permission", h.setNotificationPermission)
	r.Get("/stats", h.getStats)
	return r
}

type alarmRequest struct {
	Name         string `json:"name"`
	Time         string `json:"time" validate:"required"`
	Days         []bool `json:"days" validate:"required,len=7"`
	Exam         string `json:"exam" validate:"required"`
	QuestionType string `json:"questionType" validate:"required"`
	Subcategory  string `json:"subcategory"`
	Difficulty   string `json:"difficulty"`
	IsActive     *bool  `json:"isActive"`
}

func (req alarmRequest) toConfig(id int64) domain.AlarmConfig {
	cfg := domain.AlarmConfig{
		ID:           id,
		Name:         req.Name,
		Time:         req.Time,
		Exam:         req.Exam,
		QuestionType: req.QuestionType,
		Subcategory:  req.Subcategory,
		Difficulty:   req.Difficulty,
		IsActive:     true,
	}
	copy(cfg.Days[:], req.Days)
	if cfg.Subcategory == "" {
		cfg.Subcategory = domain.AnySubcategory
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.AnyDifficulty
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	return cfg
}

type questionRequest struct {
	Exam          string   `json:"exam" validate:"required"`
	Type          string   `json:"type" validate:"required"`
	Subcategory   string   `json:"subcategory"`
	Text          string   `json:"text" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Choices       []string `json:"choices" validate:"required,min=2"`
	Difficulty    string   `json:"difficulty"`
	Explanation   string   `json:"explanation"`
}

func (req questionRequest) toQuestion(id int64) domain.Question {
	return domain.Question{
		ID:            id,
		Exam:          req.Exam,
		Type:          req.Type,
		Subcategory:   req.Subcategory,
		Text:          req.Text,
		CorrectAnswer: req.CorrectAnswer,
		Choices:       req.Choices,
		Difficulty:    req.Difficulty,
		Explanation:   req.Explanation,
	}
}

func (h *APIHandler) listAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.scheduler.ListAlarms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (h *APIHandler) createAlarm(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg, err := h.scheduler.CreateAlarm(r.Context(), req.toConfig(0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *APIHandler) getAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cfg, err := h.scheduler.GetAlarm(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *APIHandler) updateAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req alarmRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.scheduler.UpdateAlarm(r.Context(), req.toConfig(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *APIHandler) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.scheduler.DeleteAlarm(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cfg, err := h.scheduler.ToggleAlarm(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *APIHandler) listActiveAlarms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.ActiveAlarms())
}

// testAlarm rings immediately with the submitted filters, the "try it now"
// path. Validation failures surface as a short human-readable message.
func (h *APIHandler) testAlarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exam         string `json:"exam" validate:"required"`
		QuestionType string `json:"questionType" validate:"required"`
		Subcategory  string `json:"subcategory"`
		Difficulty   string `json:"difficulty"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	cfg := domain.AlarmConfig{
		Exam:         req.Exam,
		QuestionType: req.QuestionType,
		Subcategory:  req.Subcategory,
		Difficulty:   req.Difficulty,
		IsActive:     true,
	}
	if cfg.Subcategory == "" {
		cfg.Subcategory = domain.AnySubcategory
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.AnyDifficulty
	}
	if err := h.scheduler.TestFire(r.Context(), cfg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *APIHandler) answerAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	correct, err := h.scheduler.SubmitAnswer(r.Context(), id, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResultPayload{AlarmID: id, Correct: correct})
}

func (h *APIHandler) dismissAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.scheduler.Dismiss(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) snoozeAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.scheduler.Snooze(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *APIHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.QuestionFilter{
		Exam:         q.Get("exam"),
		QuestionType: q.Get("type"),
		Subcategory:  q.Get("subcategory"),
		Difficulty:   q.Get("difficulty"),
	}
	questions, err := h.questions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *APIHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	question, err := h.questions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *APIHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.decode(w, r, &req) {
		return
	}
	question, err := h.questions.Create(r.Context(), req.toQuestion(0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *APIHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req questionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.questions.Update(r.Context(), req.toQuestion(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *APIHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.questions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getExamPreference(w http.ResponseWriter, r *http.Request) {
	exam, err := h.scheduler.ExamPreference(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"exam": exam})
}

func (h *APIHandler) setExamPreference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exam string `json:"exam" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.scheduler.SetExamPreference(r.Context(), req.Exam); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) setNotificationPermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Granted bool `json:"granted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.scheduler.SetNotificationPermission(r.Context(), req.Granted); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scheduler.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode unmarshals and validates a request body; on failure it writes a 400
// with a short human-readable message and returns false.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, "missing or invalid fields: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAlarmNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidAlarmTime), errors.Is(err, domain.ErrAnswerNotInChoices):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlarmNotRinging):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
