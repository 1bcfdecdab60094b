package course

import "gorm.io/gorm"

// Module represents an ordered chapter within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order" gorm:"column:module_order;default:0"` // position within the course
	Duration    int64  `json:"duration" gorm:"default:0"`                  // seconds
	IsDeleted   bool   `gorm:"default:false"`
}

// VideoLecture represents a video within a module
type VideoLecture struct {
	gorm.Model
	ModuleID  uint   `json:"module_id" gorm:"index;not null"`
	Title     string `json:"title"`
	VideoURL  string `json:"video_url"`
	Duration  int    `json:"duration"`                                   // seconds
	Order     int    `json:"order" gorm:"column:lecture_order;default:0"` // position within the module
	IsDeleted bool   `gorm:"default:false"`
}
