package task

import (
	"strings"
	"unicode/utf8"

	"github.com/fastygo/taskproof/domain"
)

const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 200
	MaxTargetHours       = 24
	MaxTargetMinutes     = 59
)

// CreateInput is what the task creation form submits.
type CreateInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	TargetHours   int    `json:"target_hours"`
	TargetMinutes int    `json:"target_minutes"`
	StartImage    string `json:"start_image"`
}

// TargetTime returns the total target duration in minutes.
func (in CreateInput) TargetTime() int {
	return in.TargetHours*60 + in.TargetMinutes
}

// Validate reports every field the user has to fix before the task can be created.
func (in CreateInput) Validate() error {
	verr := &domain.ValidationError{}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.Add("title", "enter a title")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		verr.Add("title", "title is too long")
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		verr.Add("description", "description is too long")
	}
	if strings.TrimSpace(in.StartImage) == "" {
		verr.Add("start_image", "take a start photo")
	}
	if in.TargetHours < 0 || in.TargetHours > MaxTargetHours {
		verr.Add("target_hours", "hours must be between 0 and 24")
	}
	if in.TargetMinutes < 0 || in.TargetMinutes > MaxTargetMinutes {
		verr.Add("target_minutes", "minutes must be between 0 and 59")
	}
	if in.TargetTime() <= 0 {
		verr.Add("target_time", "set a target time")
	}
	return verr.OrNil()
}
