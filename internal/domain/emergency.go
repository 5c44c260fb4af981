package domain

// Emergency questions are the last resort when both the question store and
// the offline cache come up empty. One per supported exam; deliberately
// simple so an answer is always possible while half asleep.
var emergencyQuestions = map[string]Question{
	ExamGMAT: {
		ID:            -1,
		Exam:          ExamGMAT,
		Type:          "quantitative",
		Subcategory:   "arithmetic",
		Text:          "If $x + 3 = 8$, what is the value of $x$?",
		CorrectAnswer: "5",
		Choices:       []string{"3", "4", "5", "6"},
		Difficulty:    "easy",
		Explanation:   "Subtract 3 from both sides: $x = 8 - 3 = 5$.",
	},
	ExamLSAT: {
		ID:            -2,
		Exam:          ExamLSAT,
		Type:          "logical",
		Subcategory:   "deduction",
		Text:          "All judges are lawyers. Kim is a judge. What must be true?",
		CorrectAnswer: "Kim is a lawyer",
		Choices:       []string{"Kim is a lawyer", "Kim is not a lawyer", "Some lawyers are judges", "Kim is a paralegal"},
		Difficulty:    "easy",
		Explanation:   "A judge is, by the first premise, a lawyer.",
	},
}

// EmergencyQuestion returns the hardcoded fallback question for an exam.
// Unknown exams fall back to the GMAT question so the alarm never fires
// without any question at all unless the set itself is broken.
func EmergencyQuestion(exam string) (Question, bool) {
	if q, ok := emergencyQuestions[exam]; ok {
		return q, true
	}
	q, ok := emergencyQuestions[ExamGMAT]
	return q, ok
}
