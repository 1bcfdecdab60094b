package controllers

import (
	"academy/database"
	"academy/middleware"
	"academy/models"
	courseModels "academy/models/course"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// ListUsers returns the active user base, paginated.
func ListUsers(c *fiber.Ctx) error {
	page := 1
	limit := 10
	if reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	}); ok {
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.User{}).
		Where("is_active = ? AND is_deleted = ?", true, false)

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	response := map[string]interface{}{
		"users": users,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", response)
}

// DeactivateUser marks a user inactive. Accounts are never hard deleted, the
// flag keeps their progress rows around for reporting.
func DeactivateUser(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := database.Database.Db.Model(&user).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deactivated successfully!", fiber.Map{
		"id":        user.ID,
		"email":     user.Email,
		"is_active": false,
	})
}

// ListCourseProgress returns every stored course aggregate, paginated.
func ListCourseProgress(c *fiber.Ctx) error {
	page := 1
	limit := 10
	if reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	}); ok {
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.UserCourseProgress{})

	var total int64
	db.Count(&total)

	var rows []courseModels.UserCourseProgress
	if err := db.Offset(offset).Limit(limit).Order("updated_at desc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course progress!", nil)
	}

	response := map[string]interface{}{
		"progress": rows,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", response)
}

// GetUserProgress returns one learner's full snapshot for one course.
func GetUserProgress(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	targetID, err := c.ParamsInt("user_id")
	if err != nil || targetID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	snapshot, err := engine().CourseProgress(user.ID, uint(courseID))
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User progress fetched successfully!", fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.FullName(),
			"email": user.Email,
		},
		"progress": snapshot,
	})
}

// Dashboard aggregates platform counters for the admin home screen.
func Dashboard(c *fiber.Ctx) error {
	weekStart := now.BeginningOfWeek()
	monthStart := now.BeginningOfMonth()

	var totalUsers int64
	database.Database.Db.Model(&models.User{}).
		Where("is_deleted = ?", false).Count(&totalUsers)

	var activeUsers int64
	database.Database.Db.Model(&models.User{}).
		Where("is_active = ? AND is_deleted = ?", true, false).Count(&activeUsers)

	var signupsThisWeek int64
	database.Database.Db.Model(&models.User{}).
		Where("is_deleted = ? AND created_at >= ?", false, weekStart).Count(&signupsThisWeek)

	var totalCourses int64
	database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ?", false).Count(&totalCourses)

	var completionsThisMonth int64
	database.Database.Db.Model(&courseModels.UserCourseProgress{}).
		Where("completed = ? AND updated_at >= ?", true, monthStart).Count(&completionsThisMonth)

	var certificates int64
	database.Database.Db.Model(&courseModels.UserCertification{}).Count(&certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"total_users":            totalUsers,
		"active_users":           activeUsers,
		"signups_this_week":      signupsThisWeek,
		"total_courses":          totalCourses,
		"completions_this_month": completionsThisMonth,
		"certificates_issued":    certificates,
		"generated_at":           time.Now(),
	})
}
