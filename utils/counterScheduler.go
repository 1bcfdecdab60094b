package utils

import (
	"academy/database"
	courseModels "academy/models/course"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[COUNTER-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// RecomputeCourseCounters refreshes the denormalized duration and lesson
// counters of every course from its video lectures. The stored values are
// caches and drift when lectures change; this job is the source of truth.
func RecomputeCourseCounters() {
	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("is_deleted = false").Find(&courses).Error; err != nil {
		logScheduler("Error fetching courses: " + err.Error())
		return
	}

	for _, course := range courses {
		var duration int64
		var lessons int64

		row := db.Model(&courseModels.VideoLecture{}).
			Joins("JOIN modules ON modules.id = video_lectures.module_id").
			Where("modules.course_id = ? AND modules.is_deleted = false AND video_lectures.is_deleted = false", course.ID).
			Select("COALESCE(SUM(video_lectures.duration), 0)").Row()
		if err := row.Scan(&duration); err != nil {
			logScheduler("Error summing durations: " + err.Error())
			continue
		}
		if err := db.Model(&courseModels.VideoLecture{}).
			Joins("JOIN modules ON modules.id = video_lectures.module_id").
			Where("modules.course_id = ? AND modules.is_deleted = false AND video_lectures.is_deleted = false", course.ID).
			Count(&lessons).Error; err != nil {
			logScheduler("Error counting lessons: " + err.Error())
			continue
		}

		if course.Duration != duration || course.Lessons != int(lessons) {
			course.Duration = duration
			course.Lessons = int(lessons)
			db.Save(&course)
		}

		// per-module duration caches get the same treatment
		var modules []courseModels.Module
		if err := db.Where("course_id = ? AND is_deleted = false", course.ID).Find(&modules).Error; err != nil {
			continue
		}
		for _, module := range modules {
			var moduleDuration int64
			row := db.Model(&courseModels.VideoLecture{}).
				Where("module_id = ? AND is_deleted = false", module.ID).
				Select("COALESCE(SUM(duration), 0)").Row()
			if err := row.Scan(&moduleDuration); err != nil {
				continue
			}
			if module.Duration != moduleDuration {
				module.Duration = moduleDuration
				db.Save(&module)
			}
		}
	}

	logScheduler("Course counters recomputed")
}

// StartCounterScheduler runs the counter recompute once a day.
func StartCounterScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("0 3 * * *", RecomputeCourseCounters); err != nil {
		log.Fatalf("Failed to schedule counter recompute: %v", err)
	}

	c.Start()
	logScheduler("Counter scheduler started")
}
