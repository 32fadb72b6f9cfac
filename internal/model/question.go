package model

// Category labels the subject area a question belongs to.
type Category string

const (
	CategoryRoadSigns   Category = "Road Signs & Signals"
	CategoryTrafficLaws Category = "Traffic Laws"
	CategorySafeDriving Category = "Safe Driving Practices"
)

// Question is a single multiple-choice question. Questions are built once,
// at pool-load time or per generation run, and never mutated afterwards.
type Question struct {
	ID            int      `json:"id"`
	Category      Category `json:"category"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Image         string   `json:"image,omitempty"`
}

// GeneratedQuestion is the shape required from the generation service before
// a record is admitted to a custom pool. Validation here is structural only;
// the content itself is taken on faith.
type GeneratedQuestion struct {
	Category      string   `json:"category" validate:"required"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,unique"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation" validate:"required"`
}
