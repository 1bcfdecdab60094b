package authRoutes

import (
	authControllers "academy/controllers/auth"
	"academy/middleware"
	authValidators "academy/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/register", authValidators.Signup(), authControllers.Register)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/verify/:token", authControllers.VerifyAccount)
	authGroup.Post("/forgot-password", authControllers.ForgotPassword)
	authGroup.Post("/reset-password/:token", authValidators.Password(), authControllers.ResetPasswordConfirm)
	authGroup.Patch("/reset/password", authValidators.Password(), middleware.JWTMiddleware, authControllers.ResetPassword)
	authGroup.Get("/login/history", middleware.JWTMiddleware, authControllers.LoginHistory)
}
