package transport

type ProfileUpdateRequest struct {
	Username     string `json:"username"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`
}

type CreateTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	TargetHours   int    `json:"target_hours"`
	TargetMinutes int    `json:"target_minutes"`
	StartImage    string `json:"start_image"`
}

type CompleteTaskRequest struct {
	EndImage string `json:"end_image"`
}

// SwipeRequest is a released drag on the detail screen.
type SwipeRequest struct {
	TaskID      string  `json:"task_id"`
	Translation float64 `json:"translation"`
}

type CaptureRequest struct {
	Mode   string `json:"mode"`
	TaskID string `json:"task_id"`
}

type ConfirmCaptureRequest struct {
	Mode   string `json:"mode"`
	TaskID string `json:"task_id"`
	URI    string `json:"uri"`
}
