package transport

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/navigation"
	"github.com/fastygo/taskproof/internal/progress"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := sonic.MarshalString(e)
	if err != nil {
		return "{}"
	}
	return out
}

// ValidationMeta lists the fields a client has to fix.
type ValidationMeta struct {
	Fields []domain.FieldError `json:"fields"`
}

// StoryView is a story item decorated for rendering.
type StoryView struct {
	domain.StoryItem
	StatusColor string            `json:"status_color"`
	Progress    progress.Snapshot `json:"progress"`
}

type FeedResponse struct {
	Stories       []StoryView           `json:"stories"`
	MyOngoing     []domain.Task         `json:"my_ongoing"`
	FriendOngoing []domain.TaskWithUser `json:"friend_ongoing"`
}

// TaskDetailResponse is what the detail screen needs on open.
type TaskDetailResponse struct {
	Item     domain.StoryItem  `json:"item"`
	Progress progress.Snapshot `json:"progress"`
}

type SwipeResponse struct {
	Direction string            `json:"direction"`
	Navigated bool              `json:"navigated"`
	Route     *navigation.Route `json:"route,omitempty"`
}

type CaptureResponse struct {
	Photo domain.Photo `json:"photo"`
}

// HealthResponse reports reachability of each data source.
type HealthResponse struct {
	Status     string    `json:"status"`
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	Pending    int       `json:"pending_writes"`
	CheckedAt  time.Time `json:"checked_at"`
	Degraded   []string  `json:"degraded,omitempty"`
}
