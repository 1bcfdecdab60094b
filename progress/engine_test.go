package progress

import (
	"fmt"
	"testing"

	"academy/database"
	courseModels "academy/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	database.RunMigrations(db)
	return db
}

func testEngine(t *testing.T) (*Engine, *gorm.DB) {
	db := testDB(t)
	return NewEngine(db, "https://certs.test/academy"), db
}

// seedModule creates a module under a fresh course with the given videos
// (duration seconds each) and quizzes (two questions apiece).
func seedModule(t *testing.T, db *gorm.DB, videoDurations []int, quizCount int) courseModels.Module {
	t.Helper()
	course := courseModels.Course{Title: "Options Basics", CourseType: courseModels.TypeFree}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Title: "Module 1", Order: 1}
	require.NoError(t, db.Create(&module).Error)

	for i, duration := range videoDurations {
		video := courseModels.VideoLecture{
			ModuleID: module.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			VideoURL: fmt.Sprintf("https://videos.test/%d", i+1),
			Duration: duration,
			Order:    i + 1,
		}
		require.NoError(t, db.Create(&video).Error)
	}

	for i := 1; i <= quizCount; i++ {
		quiz := courseModels.Quiz{ModuleID: module.ID, Title: fmt.Sprintf("Quiz %d", i), Order: i}
		for q := 1; q <= 2; q++ {
			quiz.Questions = append(quiz.Questions, courseModels.Question{
				Text: fmt.Sprintf("Question %d.%d", i, q),
				Options: []courseModels.QuestionOption{
					{Text: "wrong"},
					{Text: "right", IsCorrect: true},
				},
			})
		}
		require.NoError(t, db.Create(&quiz).Error)
	}
	return module
}

func moduleVideos(t *testing.T, db *gorm.DB, moduleID uint) []courseModels.VideoLecture {
	t.Helper()
	var videos []courseModels.VideoLecture
	require.NoError(t, db.Where("module_id = ?", moduleID).Order("lecture_order asc").Find(&videos).Error)
	return videos
}

func moduleQuizzes(t *testing.T, db *gorm.DB, moduleID uint) []courseModels.Quiz {
	t.Helper()
	var quizzes []courseModels.Quiz
	require.NoError(t, db.Where("module_id = ?", moduleID).Order("quiz_order asc").
		Preload("Questions").Preload("Questions.Options").Find(&quizzes).Error)
	return quizzes
}

// answers that hit the correct option of the first n questions
func quizAnswers(quiz courseModels.Quiz, correct int) map[uint]uint {
	answers := make(map[uint]uint)
	for i, question := range quiz.Questions {
		for _, option := range question.Options {
			if option.IsCorrect == (i < correct) {
				answers[question.ID] = option.ID
			}
		}
	}
	return answers
}

func attemptCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&courseModels.UserQuizAttempt{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestRecordVideoWatchCompletion(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{300, 120}, 0)
	videos := moduleVideos(t, db, module.ID)
	const userID = 1

	snap, err := engine.RecordVideoWatch(userID, videos[0].ID, 150, false)
	require.NoError(t, err)
	require.Equal(t, 150, snap.WatchedSeconds)
	require.False(t, snap.Completed)

	snap, err = engine.RecordVideoWatch(userID, videos[0].ID, 300, false)
	require.NoError(t, err)
	require.True(t, snap.Completed)

	var mp courseModels.UserModuleProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&mp).Error)
	require.False(t, mp.VideoCompleted, "one of two videos watched")

	// explicit completed flag finishes the second video early
	snap, err = engine.RecordVideoWatch(userID, videos[1].ID, 30, true)
	require.NoError(t, err)
	require.True(t, snap.Completed)

	require.NoError(t, db.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&mp).Error)
	require.True(t, mp.VideoCompleted)
}

func TestRecordVideoWatchCompletionIsMonotonic(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{100}, 0)
	videos := moduleVideos(t, db, module.ID)
	const userID = 1

	_, err := engine.RecordVideoWatch(userID, videos[0].ID, 100, false)
	require.NoError(t, err)

	// rewatching from the start keeps the completed flag
	snap, err := engine.RecordVideoWatch(userID, videos[0].ID, 10, false)
	require.NoError(t, err)
	require.Equal(t, 10, snap.WatchedSeconds)
	require.True(t, snap.Completed)
}

func TestRecordVideoWatchUnknownVideo(t *testing.T) {
	engine, _ := testEngine(t)
	_, err := engine.RecordVideoWatch(1, 9999, 10, false)
	require.ErrorIs(t, err, ErrVideoNotFound)
}

func TestSubmitQuizPass(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{60}, 1)
	videos := moduleVideos(t, db, module.ID)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	_, err := engine.RecordVideoWatch(userID, videos[0].ID, 60, false)
	require.NoError(t, err)

	result, err := engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 2))
	require.NoError(t, err)
	require.InDelta(t, 100.0, result.Score, 0.001)
	require.True(t, result.QuizPassed)
	require.True(t, result.ModuleCompleted)

	var mp courseModels.UserModuleProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&mp).Error)
	require.True(t, mp.QuizPassed)
	require.True(t, mp.Completed)
}

func TestSubmitQuizFailBelowThreshold(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{60}, 2)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	// one of two correct is 50, below the threshold
	result, err := engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 1))
	require.NoError(t, err)
	require.InDelta(t, 50.0, result.Score, 0.001)
	require.False(t, result.QuizPassed)
	require.False(t, result.ModuleCompleted)

	var mp courseModels.UserModuleProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&mp).Error)
	require.True(t, mp.Failed)
	require.Equal(t, 1, mp.Attempted)
}

func TestSubmitQuizResubmissionKeepsLatestOnly(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{}, 2)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	_, err := engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 0))
	require.NoError(t, err)
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 2))
	require.NoError(t, err)

	var attempt courseModels.UserQuizAttempt
	require.NoError(t, db.Where("user_id = ? AND quiz_id = ?", userID, quizzes[0].ID).First(&attempt).Error)
	require.Equal(t, 2, attempt.AttemptCount)
	require.True(t, attempt.Passed)
	require.EqualValues(t, 1, attemptCount(t, db, userID))
}

func TestSubmitQuizFullCycleResetsAttempts(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{}, 3)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	// fail the three quizzes in order; the third closes the cycle
	for i, quiz := range quizzes {
		_, err := engine.SubmitQuiz(userID, module.ID, quiz.ID, quizAnswers(quiz, 0))
		require.NoError(t, err)
		if i < 2 {
			require.EqualValues(t, i+1, attemptCount(t, db, userID))
		}
	}
	require.EqualValues(t, 0, attemptCount(t, db, userID), "cycle close wipes the attempt history")

	var mp courseModels.UserModuleProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&mp).Error)
	require.False(t, mp.QuizPassed)
	require.True(t, mp.Failed)
	require.Equal(t, 3, mp.Attempted)
}

func TestSubmitQuizOutOfOrderFailuresReachStuckState(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{}, 3)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	// failing in order 1, 3, 2 never lands a full attempt set on the
	// last-ordered quiz, so nothing resets and the module is stuck
	for _, idx := range []int{0, 2, 1} {
		_, err := engine.SubmitQuiz(userID, module.ID, quizzes[idx].ID, quizAnswers(quizzes[idx], 0))
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, attemptCount(t, db, userID))

	snapshot, err := engine.ModuleProgress(userID, module.ID)
	require.NoError(t, err)
	require.False(t, snapshot.QuizPassed)
	require.Len(t, snapshot.QuizProgress, 3)
	for _, status := range snapshot.QuizProgress {
		require.True(t, status.CallNext)
	}
}

func TestNextQuizResolution(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{}, 3)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	// no attempts: start with the first quiz
	next, err := engine.NextQuiz(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, quizzes[0].ID, next.ID)

	// one attempt on the last quiz: wrap around to the first
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[2].ID, quizAnswers(quizzes[2], 0))
	require.NoError(t, err)
	next, err = engine.NextQuiz(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, quizzes[0].ID, next.ID)

	// one attempt on the first quiz advances to the second
	require.NoError(t, db.Where("user_id = ?", userID).Delete(&courseModels.UserQuizAttempt{}).Error)
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 0))
	require.NoError(t, err)
	next, err = engine.NextQuiz(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, quizzes[1].ID, next.ID)

	// two or more attempts reset the history and start over
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[1].ID, quizAnswers(quizzes[1], 0))
	require.NoError(t, err)
	require.EqualValues(t, 2, attemptCount(t, db, userID))
	next, err = engine.NextQuiz(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, quizzes[0].ID, next.ID)
	require.EqualValues(t, 0, attemptCount(t, db, userID))
}

func TestResetTriggerInterleaving(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{}, 3)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	// two failures followed by a next-quiz call: the resolver-side reset
	// fires first and the submission-side modulo reset never sees a third
	// attempt
	_, err := engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 0))
	require.NoError(t, err)
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[1].ID, quizAnswers(quizzes[1], 0))
	require.NoError(t, err)

	next, err := engine.NextQuiz(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, quizzes[0].ID, next.ID)
	require.EqualValues(t, 0, attemptCount(t, db, userID))

	// driving submissions without next-quiz in between leaves the
	// submission-side reset to close the cycle on the last quiz
	for _, quiz := range quizzes {
		_, err := engine.SubmitQuiz(userID, module.ID, quiz.ID, quizAnswers(quiz, 0))
		require.NoError(t, err)
	}
	require.EqualValues(t, 0, attemptCount(t, db, userID))
}

func TestNextQuizNoQuizzes(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{60}, 0)

	_, err := engine.NextQuiz(1, module.ID)
	require.ErrorIs(t, err, ErrNoQuiz)
}

func TestModuleProgressIdempotentReads(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{60, 60}, 1)
	videos := moduleVideos(t, db, module.ID)
	const userID = 1

	_, err := engine.RecordVideoWatch(userID, videos[0].ID, 60, false)
	require.NoError(t, err)

	first, err := engine.ModuleProgress(userID, module.ID)
	require.NoError(t, err)
	second, err := engine.ModuleProgress(userID, module.ID)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, first.TotalWatched)
	require.InDelta(t, 50.0, first.ProgressPercentage, 0.001)
	require.False(t, first.Completed)
}

func TestModuleProgressNoQuizzesDependsOnVideosOnly(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{60}, 0)
	videos := moduleVideos(t, db, module.ID)
	const userID = 1

	_, err := engine.RecordVideoWatch(userID, videos[0].ID, 60, false)
	require.NoError(t, err)

	snapshot, err := engine.ModuleProgress(userID, module.ID)
	require.NoError(t, err)
	require.True(t, snapshot.QuizPassed)
	require.True(t, snapshot.Completed)
}

func TestCourseProgressAggregateAndCertificate(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{3600}, 1)
	videos := moduleVideos(t, db, module.ID)
	quizzes := moduleQuizzes(t, db, module.ID)
	const userID = 1

	courseID := module.CourseID

	snapshot, err := engine.CourseProgress(userID, courseID)
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.TotalModules)
	require.Equal(t, 1, snapshot.TotalVideos)
	require.InDelta(t, 1.0, snapshot.TotalDurationHours, 0.001)
	require.Zero(t, snapshot.ProgressPercentage)
	require.False(t, snapshot.Completed)

	_, err = engine.RecordVideoWatch(userID, videos[0].ID, 3600, false)
	require.NoError(t, err)
	_, err = engine.SubmitQuiz(userID, module.ID, quizzes[0].ID, quizAnswers(quizzes[0], 2))
	require.NoError(t, err)

	snapshot, err = engine.CourseProgress(userID, courseID)
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.CompletedModules)
	require.Equal(t, 1, snapshot.CompletedVideos)
	require.InDelta(t, 100.0, snapshot.ProgressPercentage, 0.001)
	require.True(t, snapshot.Completed)
	require.True(t, snapshot.CertificateIssued)
	require.NotEmpty(t, snapshot.CertificateURL)

	// persisted aggregate row
	var cp courseModels.UserCourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cp).Error)
	require.Equal(t, 1, cp.CompletedModules)
	require.True(t, cp.Completed)

	// the certificate is issued exactly once
	again, err := engine.CourseProgress(userID, courseID)
	require.NoError(t, err)
	require.False(t, again.CertificateIssued)
	require.Equal(t, snapshot.CertificateURL, again.CertificateURL)

	var certs int64
	require.NoError(t, db.Model(&courseModels.UserCertification{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&certs).Error)
	require.EqualValues(t, 1, certs)
}

func TestAnonymousCallersGetTotalsWithoutWrites(t *testing.T) {
	engine, db := testEngine(t)
	module := seedModule(t, db, []int{120}, 1)
	videos := moduleVideos(t, db, module.ID)

	videoSnap, err := engine.VideoProgress(0, videos[0].ID)
	require.NoError(t, err)
	require.Equal(t, videos[0].ID, videoSnap.VideoID)
	require.Zero(t, videoSnap.WatchedSeconds)

	moduleSnap, err := engine.ModuleProgress(0, module.ID)
	require.NoError(t, err)
	require.Equal(t, 1, moduleSnap.TotalVideos)
	require.False(t, moduleSnap.Completed)

	courseSnap, err := engine.CourseProgress(0, module.CourseID)
	require.NoError(t, err)
	require.Equal(t, 1, courseSnap.TotalModules)
	require.Zero(t, courseSnap.ProgressPercentage)

	var rows int64
	db.Model(&courseModels.UserVideoProgress{}).Count(&rows)
	require.Zero(t, rows)
	db.Model(&courseModels.UserModuleProgress{}).Count(&rows)
	require.Zero(t, rows)
	db.Model(&courseModels.UserCourseProgress{}).Count(&rows)
	require.Zero(t, rows)
}
