package domain

import "errors"

var (
	// ErrAlarmNotFound is returned when an alarm config id is unknown.
	ErrAlarmNotFound = errors.New("alarm config not found")
	// ErrAlarmNotRinging is returned when an operation targets an alarm with no active instance.
	ErrAlarmNotRinging = errors.New("alarm is not ringing")
	// ErrQuestionNotFound indicates the question store has no such question.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAlarmTime indicates a time string that is not zero-padded 24h "HH:MM".
	ErrInvalidAlarmTime = errors.New("alarm time must be HH:MM")
	// ErrAnswerNotInChoices rejects authored questions whose correct answer is
	// missing from the choice list.
	ErrAnswerNotInChoices = errors.New("correct answer must appear in choices")
)
