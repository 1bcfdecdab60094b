package course

import "gorm.io/gorm"

const (
	QuestionTypeMCQ       = "mcq"
	QuestionTypeTrueFalse = "true_false"
	QuestionTypeText      = "text"
)

// Quiz belongs to a module. Order is 1-based and gap-free per module; the
// cycling resolver depends on that invariant, enforced at creation time.
type Quiz struct {
	gorm.Model
	ModuleID  uint       `json:"module_id" gorm:"index;not null"`
	Title     string     `json:"title"`
	Order     int        `json:"order" gorm:"column:quiz_order;default:0"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	IsDeleted bool       `gorm:"default:false"`
}

// Question has exactly one correct option.
type Question struct {
	gorm.Model
	QuizID       uint             `json:"quiz_id" gorm:"index;not null"`
	Text         string           `json:"text"`
	QuestionType string           `json:"question_type" gorm:"default:'mcq'"`
	Options      []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	IsDeleted    bool             `gorm:"default:false"`
}

type QuestionOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct,omitempty" gorm:"default:false"`
	IsDeleted  bool   `gorm:"default:false"`
}
