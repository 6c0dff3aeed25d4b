package repository

import "context"

// ViewRepository remembers which friends' tasks a viewer has opened.
type ViewRepository interface {
	MarkViewed(ctx context.Context, viewerID, taskID string) error
	Viewed(ctx context.Context, viewerID string, taskIDs []string) (map[string]bool, error)
}
