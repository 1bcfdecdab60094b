package controllers

import (
	"academy/database"
	"academy/middleware"
	courseModels "academy/models/course"
	courseValidator "academy/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errQuizOrderGap = errors.New("quiz order out of sequence")

func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		CourseType  string  `json:"course_type"`
		Price       float64 `json:"price"`
		Level       string  `json:"level"`
		Tier        int     `json:"tier"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.CourseType == courseModels.TypePaid && reqData.Price <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Paid courses require a positive price!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		CourseType:  reqData.CourseType,
		Price:       reqData.Price,
		Level:       reqData.Level,
		Tier:        reqData.Tier,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course created successfully!", course)
}

func CreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*struct {
		CourseID    uint   `json:"course_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Order       int    `json:"order"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Order:       reqData.Order,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module created successfully!", module)
}

func CreateLecture(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLecture").(*struct {
		ModuleID uint   `json:"module_id"`
		Title    string `json:"title"`
		VideoURL string `json:"video_url"`
		Duration int    `json:"duration"`
		Order    int    `json:"order"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	lecture := courseModels.VideoLecture{
		ModuleID: module.ID,
		Title:    reqData.Title,
		VideoURL: reqData.VideoURL,
		Duration: reqData.Duration,
		Order:    reqData.Order,
	}

	if err := database.Database.Db.Create(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture created successfully!", lecture)
}

// CreateQuiz stores a quiz with its questions and options. Quiz orders within
// a module must stay dense starting at 1, the cycling logic depends on it.
func CreateQuiz(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.CreateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	for _, q := range reqData.Questions {
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Each question needs exactly one correct option!", nil)
		}
	}

	var created courseModels.Quiz
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&courseModels.Quiz{}).
			Where("module_id = ? AND is_deleted = ?", module.ID, false).
			Count(&existing).Error; err != nil {
			return err
		}
		if reqData.Order != int(existing)+1 {
			return errQuizOrderGap
		}

		quiz := courseModels.Quiz{
			ModuleID: module.ID,
			Title:    reqData.Title,
			Order:    reqData.Order,
		}
		for _, q := range reqData.Questions {
			question := courseModels.Question{
				Text:         q.Text,
				QuestionType: q.QuestionType,
			}
			if question.QuestionType == "" {
				question.QuestionType = courseModels.QuestionTypeMCQ
			}
			for _, opt := range q.Options {
				question.Options = append(question.Options, courseModels.QuestionOption{
					Text:      opt.Text,
					IsCorrect: opt.IsCorrect,
				})
			}
			quiz.Questions = append(quiz.Questions, question)
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		created = quiz
		return nil
	})
	if err == errQuizOrderGap {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz order must extend the module's sequence without gaps!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz created successfully!", created)
}
