package controllers

import (
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/progress"
	"academy/utils"
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progress.ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	case errors.Is(err, progress.ErrModuleNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	case errors.Is(err, progress.ErrVideoNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	case errors.Is(err, progress.ErrQuizNotFound), errors.Is(err, progress.ErrNoQuiz):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process progress!", nil)
}

// GetVideoProgress returns the caller's watch state for a video. Anonymous
// callers get a zero-value snapshot and nothing is persisted.
func GetVideoProgress(c *fiber.Ctx) error {
	videoID, err := c.ParamsInt("video_id")
	if err != nil || videoID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid video ID!", nil)
	}

	snapshot, err := engine().VideoProgress(callerID(c), uint(videoID))
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video progress fetched successfully!", snapshot)
}

// UpdateVideoProgress records the watched position and recomputes the owning
// module's video completion flag.
func UpdateVideoProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Authentication required to update video progress!", nil)
	}

	videoID, err := c.ParamsInt("video_id")
	if err != nil || videoID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid video ID!", nil)
	}

	reqData, ok := c.Locals("validatedVideoProgress").(*struct {
		WatchedSeconds float64 `json:"watched_seconds"`
		Completed      bool    `json:"completed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// players report fractional positions
	watched := int(math.Ceil(reqData.WatchedSeconds))

	snapshot, err := engine().RecordVideoWatch(userID, uint(videoID), watched, reqData.Completed)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video progress updated successfully!", snapshot)
}

// GetModuleProgress returns the module snapshot: per-video completion, quiz
// statuses (including the stuck-state call_next signal) and overall state.
func GetModuleProgress(c *fiber.Ctx) error {
	moduleID, err := c.ParamsInt("module_id")
	if err != nil || moduleID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	snapshot, err := engine().ModuleProgress(callerID(c), uint(moduleID))
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module progress fetched successfully!", snapshot)
}

// SubmitQuiz scores a submission and applies the cycling rules.
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID, err := c.ParamsInt("module_id")
	if err != nil || moduleID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	reqData, ok := c.Locals("validatedQuizSubmission").(*struct {
		QuizID  uint            `json:"quiz_id"`
		Answers map[string]uint `json:"answers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// unknown question ids are scored as wrong answers, not rejected
	answers := make(map[uint]uint, len(reqData.Answers))
	for questionID, optionID := range reqData.Answers {
		id, err := strconv.ParseUint(questionID, 10, 64)
		if err != nil {
			continue
		}
		answers[uint(id)] = optionID
	}

	result, err := engine().SubmitQuiz(userID, uint(moduleID), reqData.QuizID, answers)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully!", result)
}

// GetNextQuiz resolves the next quiz of the module's cycle for the caller.
func GetNextQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID, err := c.ParamsInt("module_id")
	if err != nil || moduleID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	next, err := engine().NextQuiz(userID, uint(moduleID))
	if err != nil {
		return engineError(c, err)
	}

	// reload with questions for presentation
	quiz := next
	if err := database.Database.Db.
		Preload("Questions", "is_deleted = false").
		Preload("Questions.Options", "is_deleted = false").
		First(&quiz, next.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz!", nil)
	}
	sanitizeQuiz(&quiz)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Next quiz fetched successfully!", quiz)
}

// GetCourseProgress returns the caller's course aggregate and issues the
// certificate when the course just completed.
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	snapshot, err := engine().CourseProgress(userID, uint(courseID))
	if err != nil {
		return engineError(c, err)
	}

	if snapshot.CertificateIssued {
		var user models.User
		if err := database.Database.Db.Where("id = ?", userID).First(&user).Error; err == nil {
			utils.SendCertificateEmail(user.Email, user.FullName(), snapshot.CourseTitle, snapshot.CertificateURL)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", snapshot)
}
