package domain

import "time"

// Task is a timed activity bounded by a start photo and, once completed, an end photo.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetTime  int        `json:"target_time"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	StartImage  string     `json:"start_image"`
	EndImage    string     `json:"end_image,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsAbandoned bool       `json:"is_abandoned"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActive reports whether the task is still running.
func (t *Task) IsActive() bool {
	return t != nil && !t.IsCompleted && !t.IsAbandoned
}

// Validate checks the completion invariants of a task record.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.IsCompleted && t.IsAbandoned {
		return NewError(ErrCodeInvalid, "task cannot be both completed and abandoned")
	}
	hasEnd := t.EndTime != nil || t.EndImage != ""
	if t.IsCompleted && (t.EndTime == nil || t.EndImage == "") {
		return NewError(ErrCodeInvalid, "completed task requires end time and end image")
	}
	if !t.IsCompleted && hasEnd {
		return NewError(ErrCodeInvalid, "end time and end image are only set on completed tasks")
	}
	return nil
}

// Complete marks the task finished with the given end photo.
func (t *Task) Complete(endImage string, at time.Time) {
	end := at
	t.EndTime = &end
	t.EndImage = endImage
	t.IsCompleted = true
	t.IsAbandoned = false
	t.UpdatedAt = at
}

// Abandon marks the task given up.
func (t *Task) Abandon(at time.Time) {
	t.IsAbandoned = true
	t.UpdatedAt = at
}

// TaskWithUser is a friend's task surfaced in the feed.
type TaskWithUser struct {
	Task
	User     UserSummary `json:"user"`
	IsViewed bool        `json:"is_viewed"`
}

// StoryItem is one entry of the story feed, rebuilt per request.
type StoryItem struct {
	Task     TaskWithUser `json:"task"`
	IsMyTask bool         `json:"is_my_task"`
}
