package progress

import (
	"math"

	courseModels "academy/models/course"
)

// PassingScore is the inclusive pass threshold for quiz submissions.
const PassingScore = 90.0

// ScoreQuiz scores a submission against the quiz's questions. Answers map
// question id to the selected option id. Unanswered questions and unknown
// question/option ids count as incorrect rather than being rejected.
func ScoreQuiz(questions []courseModels.Question, answers map[uint]uint) (score float64, correct int) {
	if len(questions) == 0 {
		return 0, 0
	}
	for _, question := range questions {
		var correctOption uint
		for _, option := range question.Options {
			if option.IsCorrect {
				correctOption = option.ID
				break
			}
		}
		if selected, ok := answers[question.ID]; ok && correctOption != 0 && selected == correctOption {
			correct++
		}
	}
	return float64(correct) / float64(len(questions)) * 100, correct
}

// Passed reports whether a score meets the passing threshold.
func Passed(score float64) bool {
	return score >= PassingScore
}

// CycleClosed reports whether a failing submission on the quiz with the given
// order just closed a full pass over the module's quizzes: the last-ordered
// quiz was submitted and the attempt count is an exact multiple of the quiz
// count. Closing a cycle wipes the module's attempt history.
func CycleClosed(quizOrder, totalQuizzes, attemptCount int) bool {
	if totalQuizzes == 0 {
		return false
	}
	return quizOrder == totalQuizzes && (attemptCount/totalQuizzes)*totalQuizzes == attemptCount
}

// NextQuizOrder wraps the last attempted order back to 1 after the final quiz.
func NextQuizOrder(lastOrder, totalQuizzes int) int {
	return lastOrder%totalQuizzes + 1
}

// QuizStatus is one quiz's entry in a module progress snapshot. CallNext
// signals the stuck state: the client should fetch the next cyclic quiz
// instead of showing a pass/fail result.
type QuizStatus struct {
	QuizID    uint   `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	Attempted bool   `json:"attempted"`
	Passed    bool   `json:"passed"`
	CallNext  bool   `json:"call_next"`
}

// BuildQuizStatuses applies the module quiz aggregation policy. When every
// quiz has an attempt and none passed, the whole module is reported as stuck
// (call_next on every entry, nothing passed). A module without quizzes counts
// as all-passed so completion depends on videos alone.
func BuildQuizStatuses(quizzes []courseModels.Quiz, attempts map[uint]courseModels.UserQuizAttempt) ([]QuizStatus, bool) {
	statuses := make([]QuizStatus, 0, len(quizzes))
	if len(quizzes) == 0 {
		return statuses, true
	}

	allAttempted := true
	nonePassed := true
	for _, quiz := range quizzes {
		attempt, ok := attempts[quiz.ID]
		if !ok {
			allAttempted = false
		} else if attempt.Passed {
			nonePassed = false
		}
	}

	if allAttempted && nonePassed {
		for _, quiz := range quizzes {
			statuses = append(statuses, QuizStatus{QuizID: quiz.ID, QuizTitle: quiz.Title, CallNext: true})
		}
		return statuses, false
	}

	allPassed := true
	for _, quiz := range quizzes {
		if attempt, ok := attempts[quiz.ID]; ok {
			statuses = append(statuses, QuizStatus{QuizID: quiz.ID, QuizTitle: quiz.Title, Attempted: true, Passed: attempt.Passed})
			if !attempt.Passed {
				allPassed = false
			}
		} else {
			statuses = append(statuses, QuizStatus{QuizID: quiz.ID, QuizTitle: quiz.Title})
			allPassed = false
		}
	}
	return statuses, allPassed
}

// CoursePercentage weights module completion and video completion 50/50.
// A zero denominator contributes nothing.
func CoursePercentage(completedModules, totalModules, completedVideos, totalVideos int) float64 {
	var pct float64
	if totalModules > 0 {
		pct += float64(completedModules) / float64(totalModules) * 50
	}
	if totalVideos > 0 {
		pct += float64(completedVideos) / float64(totalVideos) * 50
	}
	return Round2(pct)
}

// Round2 rounds to two decimal places for percentage reporting.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
