package userRoutes

import (
	userControllers "academy/controllers/userControllers"
	"academy/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, userControllers.GetProfile)
	userGroup.Patch("/profile", middleware.JWTMiddleware, userControllers.UpdateProfile)
	userGroup.Get("/certificates", middleware.JWTMiddleware, userControllers.GetCertificates)
}
