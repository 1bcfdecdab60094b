package course

import (
	"time"

	"gorm.io/gorm"
)

// UserCertification is issued once per (user, course) when the course is
// complete. CertificateURL is globally unique.
type UserCertification struct {
	gorm.Model
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_user_course_cert;not null"`
	CourseID       uint      `json:"course_id" gorm:"uniqueIndex:idx_user_course_cert;not null"`
	CertificateURL string    `json:"certificate_url" gorm:"unique"`
	IssuedOn       time.Time `json:"issued_on"`
}
