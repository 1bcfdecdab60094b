package progress

import (
	"errors"
	"time"

	courseModels "academy/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
	ErrVideoNotFound  = errors.New("video not found")
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrNoQuiz         = errors.New("module has no quizzes")
)

// Engine computes and persists per-user completion state for videos, modules
// and courses, and resolves quiz-attempt cycling. Every mutating operation
// runs in a single transaction with the affected progress row locked, so
// concurrent submissions for the same (user, module) serialize instead of
// losing updates.
type Engine struct {
	db          *gorm.DB
	certBaseURL string
}

func NewEngine(db *gorm.DB, certBaseURL string) *Engine {
	return &Engine{db: db, certBaseURL: certBaseURL}
}

// VideoSnapshot is the persisted watch state of one (user, video) pair.
type VideoSnapshot struct {
	VideoID        uint `json:"video_id"`
	WatchedSeconds int  `json:"watched_seconds"`
	Completed      bool `json:"completed"`
}

// VideoStatus is one video's entry in a module snapshot.
type VideoStatus struct {
	VideoID   uint   `json:"video_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ModuleSnapshot is the aggregate progress view of one (user, module) pair.
type ModuleSnapshot struct {
	ModuleID           uint         `json:"module_id"`
	ModuleTitle        string       `json:"module_title"`
	Completed          bool         `json:"completed"`
	Videos             []VideoStatus `json:"videos"`
	TotalVideos        int          `json:"total_videos"`
	TotalWatched       int          `json:"total_watched"`
	VideoCompleted     bool         `json:"video_completed"`
	ProgressPercentage float64      `json:"progress_percentage"`
	QuizProgress       []QuizStatus `json:"quiz_progress"`
	QuizPassed         bool         `json:"quiz_passed"`
	Attempted          int          `json:"attempted"`
}

// SubmitResult is the outcome of one quiz submission.
type SubmitResult struct {
	Score           float64 `json:"score"`
	QuizPassed      bool    `json:"quiz_passed"`
	ModuleCompleted bool    `json:"module_completed"`
}

// CourseSnapshot is the aggregate progress view of one (user, course) pair.
// Total counters are filled for anonymous callers too; user counters stay zero.
type CourseSnapshot struct {
	CourseID           uint    `json:"course_id"`
	CourseTitle        string  `json:"course_title"`
	CompletedModules   int     `json:"completed_modules"`
	TotalModules       int     `json:"total_modules"`
	CompletedVideos    int     `json:"completed_videos"`
	TotalVideos        int     `json:"total_videos"`
	TotalDurationHours float64 `json:"total_duration_hours"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Completed          bool    `json:"completed"`
	CertificateURL     string  `json:"certificate_url,omitempty"`
	CertificateIssued  bool    `json:"-"`
}

// forUpdate adds a row lock on dialects that support it. SQLite (tests)
// serializes writers on its own and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockedModuleProgress fetches or lazily creates the (user, module) progress
// row, holding it for update for the rest of the transaction.
func lockedModuleProgress(tx *gorm.DB, userID, moduleID uint) (*courseModels.UserModuleProgress, error) {
	mp := courseModels.UserModuleProgress{UserID: userID, ModuleID: moduleID}
	err := forUpdate(tx).Where("user_id = ? AND module_id = ?", userID, moduleID).FirstOrCreate(&mp).Error
	return &mp, err
}

// VideoProgress returns the watch state for a video. Anonymous callers
// (userID 0) get a zero-value snapshot and nothing is persisted.
func (e *Engine) VideoProgress(userID, videoID uint) (VideoSnapshot, error) {
	var video courseModels.VideoLecture
	if err := e.db.Where("id = ? AND is_deleted = false", videoID).First(&video).Error; err != nil {
		return VideoSnapshot{}, ErrVideoNotFound
	}

	if userID == 0 {
		return VideoSnapshot{VideoID: video.ID}, nil
	}

	vp := courseModels.UserVideoProgress{UserID: userID, VideoID: video.ID}
	if err := e.db.Where("user_id = ? AND video_id = ?", userID, video.ID).FirstOrCreate(&vp).Error; err != nil {
		return VideoSnapshot{}, err
	}
	return VideoSnapshot{VideoID: video.ID, WatchedSeconds: vp.WatchedSeconds, Completed: vp.Completed}, nil
}

// RecordVideoWatch overwrites the user's watch position and recomputes the
// owning module's video_completed flag from all sibling videos.
func (e *Engine) RecordVideoWatch(userID, videoID uint, watchedSeconds int, completed bool) (VideoSnapshot, error) {
	var snapshot VideoSnapshot

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var video courseModels.VideoLecture
		if err := tx.Where("id = ? AND is_deleted = false", videoID).First(&video).Error; err != nil {
			return ErrVideoNotFound
		}

		mp, err := lockedModuleProgress(tx, userID, video.ModuleID)
		if err != nil {
			return err
		}

		vp := courseModels.UserVideoProgress{UserID: userID, VideoID: video.ID}
		if err := tx.Where("user_id = ? AND video_id = ?", userID, video.ID).FirstOrCreate(&vp).Error; err != nil {
			return err
		}

		vp.WatchedSeconds = watchedSeconds
		// completion is monotonic: the flag is only ever raised
		if watchedSeconds >= video.Duration || completed {
			vp.Completed = true
		}
		if err := tx.Save(&vp).Error; err != nil {
			return err
		}

		totalVideos, completedVideos, err := moduleVideoCounts(tx, userID, video.ModuleID)
		if err != nil {
			return err
		}

		mp.VideoCompleted = completedVideos == totalVideos
		if err := tx.Save(mp).Error; err != nil {
			return err
		}

		snapshot = VideoSnapshot{VideoID: video.ID, WatchedSeconds: vp.WatchedSeconds, Completed: vp.Completed}
		return nil
	})

	return snapshot, err
}

func moduleVideoCounts(tx *gorm.DB, userID, moduleID uint) (total, completed int64, err error) {
	if err = tx.Model(&courseModels.VideoLecture{}).
		Where("module_id = ? AND is_deleted = false", moduleID).
		Count(&total).Error; err != nil {
		return
	}
	err = tx.Model(&courseModels.UserVideoProgress{}).
		Joins("JOIN video_lectures ON video_lectures.id = user_video_progresses.video_id").
		Where("user_video_progresses.user_id = ? AND video_lectures.module_id = ? AND video_lectures.is_deleted = false AND user_video_progresses.completed = ?", userID, moduleID, true).
		Count(&completed).Error
	return
}

// ModuleProgress builds the module snapshot and, for authenticated callers,
// persists the recomputed flags onto the module-progress row. Reads are
// idempotent: repeating the call without intervening writes yields the same
// snapshot and counters.
func (e *Engine) ModuleProgress(userID, moduleID uint) (ModuleSnapshot, error) {
	var module courseModels.Module
	if err := e.db.Where("id = ? AND is_deleted = false", moduleID).First(&module).Error; err != nil {
		return ModuleSnapshot{}, ErrModuleNotFound
	}

	var videos []courseModels.VideoLecture
	if err := e.db.Where("module_id = ? AND is_deleted = false", moduleID).
		Order("lecture_order asc").Find(&videos).Error; err != nil {
		return ModuleSnapshot{}, err
	}
	var quizzes []courseModels.Quiz
	if err := e.db.Where("module_id = ? AND is_deleted = false", moduleID).
		Order("quiz_order asc").Find(&quizzes).Error; err != nil {
		return ModuleSnapshot{}, err
	}

	snapshot := ModuleSnapshot{
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		TotalVideos: len(videos),
	}

	if userID == 0 {
		for _, video := range videos {
			snapshot.Videos = append(snapshot.Videos, VideoStatus{VideoID: video.ID, Title: video.Title})
		}
		for _, quiz := range quizzes {
			snapshot.QuizProgress = append(snapshot.QuizProgress, QuizStatus{QuizID: quiz.ID, QuizTitle: quiz.Title})
		}
		return snapshot, nil
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		mp, err := lockedModuleProgress(tx, userID, moduleID)
		if err != nil {
			return err
		}

		completedVideos := 0
		for _, video := range videos {
			vp := courseModels.UserVideoProgress{UserID: userID, VideoID: video.ID}
			if err := tx.Where("user_id = ? AND video_id = ?", userID, video.ID).FirstOrCreate(&vp).Error; err != nil {
				return err
			}
			snapshot.Videos = append(snapshot.Videos, VideoStatus{VideoID: video.ID, Title: video.Title, Completed: vp.Completed})
			if vp.Completed {
				completedVideos++
			}
		}

		attempts, err := moduleAttemptMap(tx, userID, moduleID)
		if err != nil {
			return err
		}
		statuses, allPassed := BuildQuizStatuses(quizzes, attempts)

		snapshot.TotalWatched = completedVideos
		if len(videos) > 0 {
			snapshot.ProgressPercentage = Round2(float64(completedVideos) / float64(len(videos)) * 100)
		}
		snapshot.QuizProgress = statuses
		snapshot.QuizPassed = allPassed
		snapshot.VideoCompleted = completedVideos == len(videos)
		snapshot.Completed = snapshot.VideoCompleted && allPassed
		snapshot.Attempted = mp.Attempted

		mp.VideoCompleted = snapshot.VideoCompleted
		mp.QuizPassed = allPassed
		mp.Completed = snapshot.Completed
		return tx.Save(mp).Error
	})

	return snapshot, err
}

func moduleAttemptMap(tx *gorm.DB, userID, moduleID uint) (map[uint]courseModels.UserQuizAttempt, error) {
	attempts, err := moduleAttempts(tx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	byQuiz := make(map[uint]courseModels.UserQuizAttempt, len(attempts))
	for _, attempt := range attempts {
		byQuiz[attempt.QuizID] = attempt
	}
	return byQuiz, nil
}

func moduleAttempts(tx *gorm.DB, userID, moduleID uint) ([]courseModels.UserQuizAttempt, error) {
	var attempts []courseModels.UserQuizAttempt
	err := tx.
		Joins("JOIN quizzes ON quizzes.id = user_quiz_attempts.quiz_id").
		Where("user_quiz_attempts.user_id = ? AND quizzes.module_id = ? AND quizzes.is_deleted = false", userID, moduleID).
		Order("user_quiz_attempts.attempt_date desc").
		Find(&attempts).Error
	return attempts, err
}

func deleteModuleAttempts(tx *gorm.DB, userID, moduleID uint) error {
	return tx.
		Where("user_id = ? AND quiz_id IN (SELECT id FROM quizzes WHERE module_id = ?)", userID, moduleID).
		Delete(&courseModels.UserQuizAttempt{}).Error
}

// SubmitQuiz scores a submission, upserts the (user, quiz) attempt and applies
// the cycling rules: a failing submission on the last-ordered quiz that closes
// an exact cycle wipes the module's attempt history, and any failure forces
// the module back to not-passed and bumps the attempted counter.
func (e *Engine) SubmitQuiz(userID, moduleID, quizID uint, answers map[uint]uint) (SubmitResult, error) {
	var result SubmitResult

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var module courseModels.Module
		if err := tx.Where("id = ? AND is_deleted = false", moduleID).First(&module).Error; err != nil {
			return ErrModuleNotFound
		}

		var quiz courseModels.Quiz
		if err := tx.Where("id = ? AND module_id = ? AND is_deleted = false", quizID, moduleID).
			Preload("Questions", "is_deleted = false").
			Preload("Questions.Options", "is_deleted = false").
			First(&quiz).Error; err != nil {
			return ErrQuizNotFound
		}

		score, _ := ScoreQuiz(quiz.Questions, answers)
		passed := Passed(score)

		mp, err := lockedModuleProgress(tx, userID, moduleID)
		if err != nil {
			return err
		}

		// latest attempt wins; per-quiz history is not retained
		var attempt courseModels.UserQuizAttempt
		err = tx.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attempt = courseModels.UserQuizAttempt{UserID: userID, QuizID: quizID, AttemptCount: 1}
		} else if err != nil {
			return err
		} else {
			attempt.AttemptCount++
		}
		attempt.Score = score
		attempt.Passed = passed
		attempt.AttemptDate = time.Now()
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}

		mp.QuizPassed = passed
		mp.Completed = mp.VideoCompleted && passed

		if !passed {
			var totalQuizzes int64
			if err := tx.Model(&courseModels.Quiz{}).
				Where("module_id = ? AND is_deleted = false", moduleID).
				Count(&totalQuizzes).Error; err != nil {
				return err
			}
			attempts, err := moduleAttempts(tx, userID, moduleID)
			if err != nil {
				return err
			}

			if CycleClosed(quiz.Order, int(totalQuizzes), len(attempts)) {
				if err := deleteModuleAttempts(tx, userID, moduleID); err != nil {
					return err
				}
			}

			// the module stays not-passed until a full cycle passes, no
			// matter which quiz this submission was for
			mp.QuizPassed = false
			mp.Completed = false
			mp.Failed = true
			mp.Attempted++
		}

		if err := tx.Save(mp).Error; err != nil {
			return err
		}

		result = SubmitResult{Score: score, QuizPassed: passed, ModuleCompleted: mp.Completed}
		return nil
	})

	return result, err
}

// NextQuiz resolves which quiz to present next in the module's cycle:
// no attempts yet presents the first quiz, two or more attempts reset the
// history and start over, and a single attempt advances to the next order,
// wrapping after the last quiz.
func (e *Engine) NextQuiz(userID, moduleID uint) (courseModels.Quiz, error) {
	var next courseModels.Quiz

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var module courseModels.Module
		if err := tx.Where("id = ? AND is_deleted = false", moduleID).First(&module).Error; err != nil {
			return ErrModuleNotFound
		}

		var quizzes []courseModels.Quiz
		if err := tx.Where("module_id = ? AND is_deleted = false", moduleID).
			Order("quiz_order asc").Find(&quizzes).Error; err != nil {
			return err
		}
		if len(quizzes) == 0 {
			return ErrNoQuiz
		}

		attempts, err := moduleAttempts(tx, userID, moduleID)
		if err != nil {
			return err
		}

		switch {
		case len(attempts) == 0:
			next = quizzes[0]
		case len(attempts) >= 2:
			if err := deleteModuleAttempts(tx, userID, moduleID); err != nil {
				return err
			}
			next = quizzes[0]
		default:
			last := attempts[0] // newest first
			lastOrder := 0
			for _, quiz := range quizzes {
				if quiz.ID == last.QuizID {
					lastOrder = quiz.Order
					break
				}
			}
			nextOrder := NextQuizOrder(lastOrder, len(quizzes))
			next = quizzes[0]
			for _, quiz := range quizzes {
				if quiz.Order == nextOrder {
					next = quiz
					break
				}
			}
		}
		return nil
	})

	return next, err
}

// CourseProgress recomputes the course aggregate from source rows and, for
// authenticated callers, persists it and issues the certificate once the
// course is complete. Anonymous callers get the total counters only.
func (e *Engine) CourseProgress(userID, courseID uint) (CourseSnapshot, error) {
	var snapshot CourseSnapshot

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var course courseModels.Course
		if err := tx.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
			return ErrCourseNotFound
		}

		var totalModules, totalVideos int64
		var totalDuration int64
		if err := tx.Model(&courseModels.Module{}).
			Where("course_id = ? AND is_deleted = false", courseID).
			Count(&totalModules).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.VideoLecture{}).
			Joins("JOIN modules ON modules.id = video_lectures.module_id").
			Where("modules.course_id = ? AND modules.is_deleted = false AND video_lectures.is_deleted = false", courseID).
			Count(&totalVideos).Error; err != nil {
			return err
		}
		row := tx.Model(&courseModels.VideoLecture{}).
			Joins("JOIN modules ON modules.id = video_lectures.module_id").
			Where("modules.course_id = ? AND modules.is_deleted = false AND video_lectures.is_deleted = false", courseID).
			Select("COALESCE(SUM(video_lectures.duration), 0)").Row()
		if err := row.Scan(&totalDuration); err != nil {
			return err
		}

		snapshot = CourseSnapshot{
			CourseID:           course.ID,
			CourseTitle:        course.Title,
			TotalModules:       int(totalModules),
			TotalVideos:        int(totalVideos),
			TotalDurationHours: Round2(float64(totalDuration) / 3600),
		}

		if userID == 0 {
			return nil
		}

		var completedModules, completedVideos int64
		if err := tx.Model(&courseModels.UserModuleProgress{}).
			Joins("JOIN modules ON modules.id = user_module_progresses.module_id").
			Where("user_module_progresses.user_id = ? AND modules.course_id = ? AND modules.is_deleted = false AND user_module_progresses.completed = ?", userID, courseID, true).
			Count(&completedModules).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.UserVideoProgress{}).
			Joins("JOIN video_lectures ON video_lectures.id = user_video_progresses.video_id").
			Joins("JOIN modules ON modules.id = video_lectures.module_id").
			Where("user_video_progresses.user_id = ? AND modules.course_id = ? AND modules.is_deleted = false AND video_lectures.is_deleted = false AND user_video_progresses.completed = ?", userID, courseID, true).
			Count(&completedVideos).Error; err != nil {
			return err
		}

		snapshot.CompletedModules = int(completedModules)
		snapshot.CompletedVideos = int(completedVideos)
		snapshot.ProgressPercentage = CoursePercentage(int(completedModules), int(totalModules), int(completedVideos), int(totalVideos))
		snapshot.Completed = totalModules > 0 && completedModules == totalModules

		cp := courseModels.UserCourseProgress{UserID: userID, CourseID: courseID, TotalModules: int(totalModules)}
		if err := forUpdate(tx).Where("user_id = ? AND course_id = ?", userID, courseID).FirstOrCreate(&cp).Error; err != nil {
			return err
		}
		cp.CompletedModules = int(completedModules)
		cp.TotalModules = int(totalModules)
		cp.Completed = snapshot.Completed
		if err := tx.Save(&cp).Error; err != nil {
			return err
		}

		if snapshot.Completed {
			cert, issued, err := e.ensureCertificate(tx, userID, courseID)
			if err != nil {
				return err
			}
			snapshot.CertificateURL = cert.CertificateURL
			snapshot.CertificateIssued = issued
		}
		return nil
	})

	return snapshot, err
}

// ensureCertificate issues the (user, course) certificate exactly once.
func (e *Engine) ensureCertificate(tx *gorm.DB, userID, courseID uint) (*courseModels.UserCertification, bool, error) {
	var cert courseModels.UserCertification
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	if err == nil {
		return &cert, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cert = courseModels.UserCertification{
		UserID:         userID,
		CourseID:       courseID,
		CertificateURL: e.certBaseURL + "/" + uuid.NewString(),
		IssuedOn:       time.Now(),
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, false, err
	}
	return &cert, true, nil
}
