package domain

import (
	"fmt"
	"time"
)

// CaptureMode tells the camera which end of a task the photo documents.
type CaptureMode string

const (
	CaptureStart    CaptureMode = "start"
	CaptureComplete CaptureMode = "complete"
)

// ParseCaptureMode validates a textual capture mode.
func ParseCaptureMode(v string) (CaptureMode, error) {
	switch CaptureMode(v) {
	case CaptureStart, CaptureComplete:
		return CaptureMode(v), nil
	default:
		return "", NewError(ErrCodeInvalid, fmt.Sprintf("unknown capture mode %q", v))
	}
}

// Photo is a reference to a captured image.
type Photo struct {
	URI        string      `json:"uri"`
	Mode       CaptureMode `json:"mode"`
	CapturedAt time.Time   `json:"captured_at"`
}
