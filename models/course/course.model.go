package course

import (
	"strings"

	"gorm.io/gorm"
)

const (
	TypeFree = "free"
	TypePaid = "paid"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CourseType  string  `json:"course_type" gorm:"default:'free'"` // free, paid
	Price       float64 `json:"price" gorm:"default:0"`
	Level       string  `json:"level"`
	Duration    int64   `json:"duration" gorm:"default:0"` // seconds, cached sum over lectures
	Lessons     int     `json:"lessons" gorm:"default:0"`  // cached lecture count
	Slug        string  `json:"slug" gorm:"unique"`
	Tier        int     `json:"tier" gorm:"default:0"`
	CourseImage string  `json:"course_image"`
	CourseBadge string  `json:"course_badge"`
	IsDeleted   bool    `gorm:"default:false"`
}

// BeforeCreate derives the slug from title and level.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		slug := strings.ToLower(c.Title)
		if c.Level != "" {
			slug += "-" + strings.ToLower(c.Level)
		}
		c.Slug = strings.ReplaceAll(slug, " ", "-")
	}
	return nil
}
