package course

import "time"

// Progress rows are created lazily and, in the quiz-attempt case, hard-deleted
// on a cycle reset. They deliberately do not embed gorm.Model: a soft-deleted
// row would still occupy the composite unique index and block the re-insert
// after a reset.

// UserVideoProgress tracks a user's watch position on one video.
type UserVideoProgress struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_user_video;not null"`
	VideoID        uint      `json:"video_id" gorm:"uniqueIndex:idx_user_video;not null"`
	WatchedSeconds int       `json:"watched_seconds" gorm:"default:0"`
	Completed      bool      `json:"completed" gorm:"default:false"`
}

// UserModuleProgress tracks module-level completion flags. Attempted counts
// quiz-failure cycles, not individual submissions.
type UserModuleProgress struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_user_module;not null"`
	ModuleID       uint      `json:"module_id" gorm:"uniqueIndex:idx_user_module;not null"`
	VideoCompleted bool      `json:"video_completed" gorm:"default:false"`
	QuizPassed     bool      `json:"quiz_passed" gorm:"default:false"`
	Attempted      int       `json:"attempted" gorm:"default:0"`
	Completed      bool      `json:"completed" gorm:"default:false"`
	Failed         bool      `json:"failed" gorm:"default:false"`
}

// UserCourseProgress is a denormalized snapshot refreshed on every read.
type UserCourseProgress struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	UserID           uint      `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID         uint      `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CompletedModules int       `json:"completed_modules" gorm:"default:0"`
	TotalModules     int       `json:"total_modules" gorm:"default:0"`
	Completed        bool      `json:"completed" gorm:"default:false"`
}

// UserQuizAttempt holds the latest scored submission per (user, quiz). The
// rows double as the cycle log: the resolver counts them and deletes them all
// on a reset.
type UserQuizAttempt struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_user_quiz;not null"`
	QuizID       uint      `json:"quiz_id" gorm:"uniqueIndex:idx_user_quiz;not null"`
	Score        float64   `json:"score" gorm:"default:0"`
	Passed       bool      `json:"passed" gorm:"default:false"`
	AttemptCount int       `json:"attempt_count" gorm:"default:1"`
	AttemptDate  time.Time `json:"attempt_date"`
}
