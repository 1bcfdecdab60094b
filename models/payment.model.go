package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records a purchase of a paid course.
type Payment struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	PaymentID   string    `json:"payment_id" gorm:"not null"` // gateway reference
	Amount      float64   `json:"amount"`
	Status      string    `json:"status" gorm:"default:'Pending'"` // Pending, Completed
	PaymentDate time.Time `json:"payment_date"`
	IsDeleted   bool      `gorm:"default:false"`
}
