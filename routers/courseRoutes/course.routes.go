package courseRoutes

import (
	controllers "academy/controllers/course"
	paymentControllers "academy/controllers/payment"
	"academy/middleware"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public academics surface. Catalog reads work
// anonymously, progress writes require a token.
func SetupCourseRoutes(app *fiber.App) {
	academics := app.Group("/academics")

	// Catalog
	academics.Get("/courses", middleware.OptionalJWTMiddleware, controllers.GetAllCourses)
	academics.Get("/courses/:id", controllers.GetCourseDetails)
	academics.Get("/modules/:course_id", controllers.GetModules)
	academics.Get("/lectures/:module_id", controllers.GetLectures)
	academics.Get("/modules/:module_id/quiz", controllers.GetModuleQuiz)

	// Video progress
	academics.Get("/progress/video/:video_id", middleware.OptionalJWTMiddleware, controllers.GetVideoProgress)
	academics.Patch("/progress/video/:video_id", middleware.JWTMiddleware, validators.VideoProgress(), controllers.UpdateVideoProgress)

	// Module progress and quiz cycle
	academics.Get("/progress/module/:module_id", middleware.OptionalJWTMiddleware, controllers.GetModuleProgress)
	academics.Post("/modules/:module_id/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuiz)
	academics.Get("/modules/:module_id/next-quiz", middleware.JWTMiddleware, controllers.GetNextQuiz)

	// Course aggregate
	academics.Get("/progress/course/:course_id", middleware.JWTMiddleware, controllers.GetCourseProgress)

	// Purchase
	academics.Post("/courses/:id/purchase", middleware.JWTMiddleware, validators.Purchase(), paymentControllers.PurchaseCourse)
	academics.Get("/payments", middleware.JWTMiddleware, paymentControllers.MyPayments)
}
