package courseRoutes

import (
	controllers "academy/controllers/course"
	"academy/middleware"
	"academy/models"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up the admin surface. Everything here requires a
// token with the ADMIN role.
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/users", validators.List(), controllers.ListUsers)
	adminGroup.Delete("/users/:id", controllers.DeactivateUser)
	adminGroup.Get("/course-progress", validators.List(), controllers.ListCourseProgress)
	adminGroup.Get("/user-progress/:course_id/:user_id", controllers.GetUserProgress)
	adminGroup.Get("/dashboard", controllers.Dashboard)

	adminGroup.Post("/courses", validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Post("/modules", validators.CreateModule(), controllers.CreateModule)
	adminGroup.Post("/lectures", validators.CreateLecture(), controllers.CreateLecture)
	adminGroup.Post("/quizzes", validators.CreateQuiz(), controllers.CreateQuiz)
}
