package controllers

import (
	"academy/config"
	"academy/database"
	"academy/middleware"
	courseModels "academy/models/course"
	"academy/progress"

	"github.com/gofiber/fiber/v2"
)

func engine() *progress.Engine {
	return progress.NewEngine(database.Database.Db, config.AppConfig.CertificateBaseURL)
}

// callerID returns the authenticated user id, or 0 for anonymous requests.
func callerID(c *fiber.Ctx) uint {
	if userID, ok := c.Locals("userId").(uint); ok {
		return userID
	}
	return 0
}

// CourseWithProgress is one entry of the course listing: catalog fields plus
// the caller's progress aggregate.
type CourseWithProgress struct {
	courseModels.Course
	CompletedModules   int     `json:"completed_modules"`
	TotalModules       int     `json:"total_modules"`
	CompletedVideos    int     `json:"completed_videos"`
	TotalVideos        int     `json:"total_videos"`
	TotalDurationHours float64 `json:"total_duration_hours"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Completed          bool    `json:"completed"`
}

// GetAllCourses lists every course with total counters; for authenticated
// callers the per-user aggregate is computed and persisted course by course.
func GetAllCourses(c *fiber.Ctx) error {
	userID := callerID(c)

	var courses []courseModels.Course
	if err := database.Database.Db.
		Where("is_deleted = false").Order("id asc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	result := make([]CourseWithProgress, 0, len(courses))
	for _, course := range courses {
		snapshot, err := engine().CourseProgress(userID, course.ID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute course progress!", nil)
		}
		result = append(result, CourseWithProgress{
			Course:             course,
			CompletedModules:   snapshot.CompletedModules,
			TotalModules:       snapshot.TotalModules,
			CompletedVideos:    snapshot.CompletedVideos,
			TotalVideos:        snapshot.TotalVideos,
			TotalDurationHours: snapshot.TotalDurationHours,
			ProgressPercentage: snapshot.ProgressPercentage,
			Completed:          snapshot.Completed,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", result)
}

// GetCourseDetails returns a single course.
func GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// GetModules returns a course's modules in display order.
func GetModules(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = false", courseID).
		Order("module_order asc").
		Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

// sanitizeQuiz hides the correct-answer flags before a quiz leaves the API.
func sanitizeQuiz(quiz *courseModels.Quiz) {
	for i := range quiz.Questions {
		for j := range quiz.Questions[i].Options {
			quiz.Questions[i].Options[j].IsCorrect = false
		}
	}
}

func loadModuleQuiz(moduleID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := database.Database.Db.
		Where("module_id = ? AND is_deleted = false", moduleID).
		Order("quiz_order asc").
		Preload("Questions", "is_deleted = false").
		Preload("Questions.Options", "is_deleted = false").
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	sanitizeQuiz(&quiz)
	return &quiz, nil
}

// GetLectures returns a module's video lectures together with its quiz.
func GetLectures(c *fiber.Ctx) error {
	moduleID, err := c.ParamsInt("module_id")
	if err != nil || moduleID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", moduleID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var videos []courseModels.VideoLecture
	if err := database.Database.Db.
		Where("module_id = ? AND is_deleted = false", moduleID).
		Order("lecture_order asc").
		Find(&videos).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lectures!", nil)
	}

	quiz, _ := loadModuleQuiz(module.ID) // nil when the module has none

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lectures fetched successfully!", fiber.Map{
		"id":     module.ID,
		"module": module.Title,
		"videos": videos,
		"quiz":   quiz,
	})
}

// GetModuleQuiz returns the module's quiz with questions and options.
func GetModuleQuiz(c *fiber.Ctx) error {
	moduleID, err := c.ParamsInt("module_id")
	if err != nil || moduleID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", moduleID).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	quiz, err := loadModuleQuiz(module.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No quiz found for this module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}
