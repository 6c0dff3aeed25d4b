// Package progress derives elapsed time, progress and color coding from a task
// and the current instant. Every function here is pure.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/fastygo/taskproof/domain"
)

// Palette used for the elapsed-time label.
const (
	ColorCompleted = "#4CAF50"
	ColorAbandoned = "#9E9E9E"
	ColorOnTime    = "#8E3FCA"
	ColorOverrun   = "#F44336"
)

// Palette used for story rings.
const (
	StoryCompleted      = "#4CAF50"
	StoryAbandoned      = "#9E9E9E"
	StoryMine           = "#2196F3"
	StoryFriendUnviewed = "#8E3FCA"
	StoryFriendViewed   = "#BDBDBD"
)

// DefaultRadius is the radius of the circular track around the task photo.
const DefaultRadius = 136.0

// Elapsed returns whole minutes and the seconds component since the task started.
func Elapsed(task domain.Task, now time.Time) (minutes, seconds int) {
	ms := now.Sub(task.StartTime).Milliseconds()
	if ms < 0 {
		return 0, 0
	}
	return int(ms / 60_000), int((ms / 1_000) % 60)
}

// IsTimeExceeded reports whether elapsed minutes overran the target.
func IsTimeExceeded(task domain.Task, now time.Time) bool {
	minutes, _ := Elapsed(task, now)
	return minutes > task.TargetTime
}

// Percentage returns progress toward the target in [0, 100].
func Percentage(task domain.Task, now time.Time) int {
	minutes, _ := Elapsed(task, now)
	return percentOf(minutes, task.TargetTime, now.After(task.StartTime))
}

func percentOf(minutes, target int, started bool) int {
	if target <= 0 {
		if started {
			return 100
		}
		return 0
	}
	pct := int(math.Floor(float64(minutes) / float64(target) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Angle maps a percentage to degrees, 0% at twelve o'clock, clockwise.
func Angle(percentage int) float64 {
	return float64(percentage)/100*360 - 90
}

// Position places a marker on a circle of the given radius.
func Position(angle, radius float64) (x, y float64) {
	rad := angle * math.Pi / 180
	return math.Cos(rad) * radius, math.Sin(rad) * radius
}

// TimeColor picks the label color for the task's current state.
func TimeColor(task domain.Task, now time.Time) string {
	switch {
	case task.IsCompleted:
		return ColorCompleted
	case task.IsAbandoned:
		return ColorAbandoned
	case IsTimeExceeded(task, now):
		return ColorOverrun
	default:
		return ColorOnTime
	}
}

// StoryStatusColor picks the ring color of a story item.
func StoryStatusColor(item domain.StoryItem) string {
	switch {
	case item.Task.IsCompleted:
		return StoryCompleted
	case item.Task.IsAbandoned:
		return StoryAbandoned
	case item.IsMyTask:
		return StoryMine
	case item.Task.IsViewed:
		return StoryFriendViewed
	default:
		return StoryFriendUnviewed
	}
}

// FormatElapsed renders "+ HH:MM:SS".
func FormatElapsed(minutes, seconds int) string {
	return fmt.Sprintf("+ %02d:%02d:%02d", minutes/60, minutes%60, seconds)
}

// FormatTarget renders a target duration as "HH:MM".
func FormatTarget(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Snapshot bundles every derived value for one instant.
type Snapshot struct {
	TaskID         string  `json:"task_id"`
	ElapsedMinutes int     `json:"elapsed_minutes"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	Elapsed        string  `json:"elapsed"`
	Target         string  `json:"target"`
	Percentage     int     `json:"percentage"`
	Angle          float64 `json:"angle"`
	MarkerX        float64 `json:"marker_x"`
	MarkerY        float64 `json:"marker_y"`
	Exceeded       bool    `json:"exceeded"`
	Color          string  `json:"color"`
}

// Compute evaluates the task at now. Finished tasks are frozen at their end:
// completed tasks at EndTime, abandoned ones at UpdatedAt.
func Compute(task domain.Task, now time.Time, radius float64) Snapshot {
	at := ReferenceTime(task, now)
	minutes, seconds := Elapsed(task, at)
	pct := percentOf(minutes, task.TargetTime, at.After(task.StartTime))
	angle := Angle(pct)
	x, y := Position(angle, radius)
	return Snapshot{
		TaskID:         task.ID,
		ElapsedMinutes: minutes,
		ElapsedSeconds: seconds,
		Elapsed:        FormatElapsed(minutes, seconds),
		Target:         FormatTarget(task.TargetTime),
		Percentage:     pct,
		Angle:          angle,
		MarkerX:        x,
		MarkerY:        y,
		Exceeded:       minutes > task.TargetTime,
		Color:          TimeColor(task, at),
	}
}

// ReferenceTime is the instant elapsed time is measured against.
func ReferenceTime(task domain.Task, now time.Time) time.Time {
	switch {
	case task.IsCompleted && task.EndTime != nil:
		return *task.EndTime
	case task.IsAbandoned && !task.UpdatedAt.IsZero():
		return task.UpdatedAt
	default:
		return now
	}
}
