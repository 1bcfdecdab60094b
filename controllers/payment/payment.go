package paymentController

import (
	"academy/config"
	"academy/database"
	"academy/middleware"
	"academy/models"
	courseModels "academy/models/course"
	"encoding/json"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
)

// PurchaseCourse records a payment for a paid course after verifying the
// gateway reference. Free courses never go through here.
func PurchaseCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	reqData, ok := c.Locals("validatedPurchase").(*struct {
		PaymentID string `json:"payment_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.CourseType != courseModels.TypePaid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is free, no purchase needed!", nil)
	}

	var existing models.Payment
	if err := database.Database.Db.
		Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?", userId, course.ID, "Completed", false).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already purchased!", nil)
	}

	status := verifyGatewayPayment(reqData.PaymentID, course.Price)

	payment := models.Payment{
		UserID:      userId,
		CourseID:    course.ID,
		PaymentID:   reqData.PaymentID,
		Amount:      course.Price,
		Status:      status,
		PaymentDate: time.Now(),
	}
	if err := database.Database.Db.Create(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment recorded successfully!", payment)
}

// verifyGatewayPayment asks the payment gateway about the reference. Keeps
// the record in Pending when the gateway is unreachable so it can be
// reconciled later.
func verifyGatewayPayment(paymentID string, amount float64) string {
	if config.AppConfig.PaymentGatewayURL == "" {
		log.Println("Payment gateway URL not configured; recording payment as Pending")
		return "Pending"
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+config.AppConfig.PaymentGatewayKey).
		Get(config.AppConfig.PaymentGatewayURL + "/payments/" + paymentID)
	if err != nil {
		log.Printf("Failed to verify payment %s: %v", paymentID, err)
		return "Pending"
	}
	if resp.StatusCode() != 200 {
		log.Printf("Gateway returned %d for payment %s: %s", resp.StatusCode(), paymentID, resp.String())
		return "Failed"
	}

	var gatewayResp struct {
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(resp.Body(), &gatewayResp); err != nil {
		log.Printf("Failed to parse gateway response for %s: %v", paymentID, err)
		return "Pending"
	}
	if gatewayResp.Status != "captured" || gatewayResp.Amount < amount {
		return "Failed"
	}
	return "Completed"
}

// MyPayments lists the caller's payment history.
func MyPayments(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var payments []models.Payment
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("payment_date desc").
		Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments": payments,
	})
}
