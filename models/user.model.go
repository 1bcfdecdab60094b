package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	FirstName   string     `json:"first_name" gorm:"default:''"`
	LastName    string     `json:"last_name" gorm:"default:''"`
	Email       string     `json:"email" gorm:"unique;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Role        string     `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	PhoneNumber string     `json:"phone_number" gorm:"default:''"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	ZipCode     string     `json:"zip_code"`
	TimeZone    string     `json:"time_zone"`
	XHandle     string     `json:"x_handle"`
	IsActive    bool       `json:"is_active" gorm:"default:false"` // set true after email verification
	LastLogin   *time.Time `json:"last_login"`
	IsDeleted   bool       `gorm:"default:false"`
}

// FullName returns the display name used in outbound emails.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}
