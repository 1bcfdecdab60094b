package progress

import (
	"testing"

	courseModels "academy/models/course"

	"github.com/stretchr/testify/require"
)

func makeQuiz(questionCount int) []courseModels.Question {
	questions := make([]courseModels.Question, 0, questionCount)
	for i := 1; i <= questionCount; i++ {
		q := courseModels.Question{}
		q.ID = uint(i)
		wrong := courseModels.QuestionOption{}
		wrong.ID = uint(i * 10)
		right := courseModels.QuestionOption{IsCorrect: true}
		right.ID = uint(i*10 + 1)
		q.Options = []courseModels.QuestionOption{wrong, right}
		questions = append(questions, q)
	}
	return questions
}

// answers selecting the correct option for the first n questions
func correctAnswers(questions []courseModels.Question, n int) map[uint]uint {
	answers := make(map[uint]uint)
	for i, q := range questions {
		if i >= n {
			break
		}
		for _, opt := range q.Options {
			if opt.IsCorrect {
				answers[q.ID] = opt.ID
			}
		}
	}
	return answers
}

func TestScoreQuizPassBoundary(t *testing.T) {
	questions := makeQuiz(10)

	score, correct := ScoreQuiz(questions, correctAnswers(questions, 9))
	require.Equal(t, 9, correct)
	require.InDelta(t, 90.0, score, 0.001)
	require.True(t, Passed(score))

	score, correct = ScoreQuiz(questions, correctAnswers(questions, 8))
	require.Equal(t, 8, correct)
	require.InDelta(t, 80.0, score, 0.001)
	require.False(t, Passed(score))
}

func TestScoreQuizIgnoresUnknownIDs(t *testing.T) {
	questions := makeQuiz(4)
	answers := correctAnswers(questions, 4)
	answers[999] = 1    // unknown question
	answers[1] = 424242 // wrong option for question 1

	score, correct := ScoreQuiz(questions, answers)
	require.Equal(t, 3, correct)
	require.InDelta(t, 75.0, score, 0.001)
}

func TestScoreQuizNoQuestions(t *testing.T) {
	score, correct := ScoreQuiz(nil, map[uint]uint{1: 2})
	require.Zero(t, correct)
	require.Zero(t, score)
	require.False(t, Passed(score))
}

func TestCycleClosed(t *testing.T) {
	// three quizzes: only a submission on the last order with a full
	// attempt set closes the cycle
	require.True(t, CycleClosed(3, 3, 3))
	require.True(t, CycleClosed(3, 3, 6))
	require.False(t, CycleClosed(2, 3, 3))
	require.False(t, CycleClosed(3, 3, 2))
	require.False(t, CycleClosed(3, 3, 4))

	// single-quiz module closes on every failing attempt
	require.True(t, CycleClosed(1, 1, 1))

	require.False(t, CycleClosed(0, 0, 0))
}

func TestNextQuizOrderWrapsAround(t *testing.T) {
	require.Equal(t, 2, NextQuizOrder(1, 3))
	require.Equal(t, 3, NextQuizOrder(2, 3))
	require.Equal(t, 1, NextQuizOrder(3, 3))
	require.Equal(t, 1, NextQuizOrder(1, 1))
}

func quizWithID(id uint, title string) courseModels.Quiz {
	quiz := courseModels.Quiz{Title: title}
	quiz.ID = id
	return quiz
}

func TestBuildQuizStatusesStuckState(t *testing.T) {
	quizzes := []courseModels.Quiz{quizWithID(1, "a"), quizWithID(2, "b")}
	attempts := map[uint]courseModels.UserQuizAttempt{
		1: {QuizID: 1, Passed: false},
		2: {QuizID: 2, Passed: false},
	}

	statuses, allPassed := BuildQuizStatuses(quizzes, attempts)
	require.False(t, allPassed)
	require.Len(t, statuses, 2)
	for _, status := range statuses {
		require.True(t, status.CallNext)
		require.False(t, status.Attempted)
		require.False(t, status.Passed)
	}
}

func TestBuildQuizStatusesMixed(t *testing.T) {
	quizzes := []courseModels.Quiz{quizWithID(1, "a"), quizWithID(2, "b"), quizWithID(3, "c")}
	attempts := map[uint]courseModels.UserQuizAttempt{
		1: {QuizID: 1, Passed: true},
		2: {QuizID: 2, Passed: false},
	}

	statuses, allPassed := BuildQuizStatuses(quizzes, attempts)
	require.False(t, allPassed)
	require.Len(t, statuses, 3)
	require.True(t, statuses[0].Attempted)
	require.True(t, statuses[0].Passed)
	require.True(t, statuses[1].Attempted)
	require.False(t, statuses[1].Passed)
	require.False(t, statuses[2].Attempted)
	for _, status := range statuses {
		require.False(t, status.CallNext)
	}
}

func TestBuildQuizStatusesAllPassed(t *testing.T) {
	quizzes := []courseModels.Quiz{quizWithID(1, "a"), quizWithID(2, "b")}
	attempts := map[uint]courseModels.UserQuizAttempt{
		1: {QuizID: 1, Passed: true},
		2: {QuizID: 2, Passed: true},
	}

	statuses, allPassed := BuildQuizStatuses(quizzes, attempts)
	require.True(t, allPassed)
	require.Len(t, statuses, 2)
}

func TestBuildQuizStatusesNoQuizzes(t *testing.T) {
	statuses, allPassed := BuildQuizStatuses(nil, nil)
	require.True(t, allPassed)
	require.Empty(t, statuses)
}

func TestCoursePercentage(t *testing.T) {
	// 1 of 4 modules and 3 of 4 videos: 12.5 + 37.5
	require.InDelta(t, 50.0, CoursePercentage(1, 4, 3, 4), 0.001)
	require.InDelta(t, 62.5, CoursePercentage(1, 2, 3, 4), 0.001)
	require.InDelta(t, 100.0, CoursePercentage(2, 2, 5, 5), 0.001)
	require.Zero(t, CoursePercentage(0, 0, 0, 0))
	// empty course halves contribute nothing
	require.InDelta(t, 50.0, CoursePercentage(2, 2, 0, 0), 0.001)
}
