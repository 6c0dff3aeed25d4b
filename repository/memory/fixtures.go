package memory

import (
	"context"
	"time"

	"github.com/fastygo/taskproof/domain"
)

// DemoViewer is the user the demo fixtures are seen from.
const DemoViewer = "user1"

// Fixtures is a small world of two friends with running and finished tasks,
// timed relative to now.
type Fixtures struct {
	Users   []domain.User
	Friends [][2]string
	Tasks   []domain.Task
	Viewed  map[string][]string
}

func DemoFixtures(now time.Time) Fixtures {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	endAt := func(d time.Duration) *time.Time { t := ago(d); return &t }
	placeholder := "https://via.placeholder.com/300x400/"

	return Fixtures{
		Users: []domain.User{
			{ID: "user1", Username: "me", Nickname: "Me", ProfileImage: "https://via.placeholder.com/50x50/2196F3/FFFFFF?text=ME"},
			{ID: "user2", Username: "friend1", Nickname: "Friend 1", ProfileImage: "https://via.placeholder.com/50x50/9C27B0/FFFFFF?text=F1"},
			{ID: "user3", Username: "friend2", Nickname: "Friend 2", ProfileImage: "https://via.placeholder.com/50x50/FF9800/FFFFFF?text=F2"},
		},
		Friends: [][2]string{{"user1", "user2"}, {"user1", "user3"}},
		Tasks: []domain.Task{
			{
				ID: "1", UserID: "user1", Title: "Workout", Description: "A 30 minute run.",
				TargetTime: 30, StartTime: ago(20 * time.Minute),
				StartImage: placeholder + "4CAF50/FFFFFF?text=workout+start",
				CreatedAt:  ago(20 * time.Minute), UpdatedAt: ago(20 * time.Minute),
			},
			{
				ID: "2", UserID: "user1", Title: "Study", Description: "Two hours of app development.",
				TargetTime: 120, StartTime: ago(2 * time.Hour), EndTime: endAt(30 * time.Minute),
				StartImage: placeholder + "2196F3/FFFFFF?text=study+start",
				EndImage:   placeholder + "FF9800/FFFFFF?text=study+done",
				IsCompleted: true,
				CreatedAt:   ago(2 * time.Hour), UpdatedAt: ago(30 * time.Minute),
			},
			{
				ID: "3", UserID: "user2", Title: "Cooking", Description: "Making dinner.",
				TargetTime: 60, StartTime: ago(45 * time.Minute),
				StartImage: placeholder + "FF5722/FFFFFF?text=cooking+start",
				CreatedAt:  ago(45 * time.Minute), UpdatedAt: ago(45 * time.Minute),
			},
			{
				ID: "4", UserID: "user3", Title: "Reading", Description: "Finish the novel.",
				TargetTime: 60, StartTime: ago(2 * time.Hour), EndTime: endAt(time.Hour),
				StartImage: placeholder + "795548/FFFFFF?text=reading+start",
				EndImage:   placeholder + "607D8B/FFFFFF?text=reading+done",
				IsCompleted: true,
				CreatedAt:   ago(2 * time.Hour), UpdatedAt: ago(time.Hour),
			},
		},
		Viewed: map[string][]string{"user1": {"4"}},
	}
}

// Seed loads fixtures into the store.
func (s *Store) Seed(ctx context.Context, f Fixtures) error {
	users := s.Users()
	for i := range f.Users {
		if err := users.Upsert(ctx, &f.Users[i]); err != nil {
			return err
		}
	}
	for _, pair := range f.Friends {
		if err := users.AddFriend(ctx, pair[0], pair[1]); err != nil {
			return err
		}
	}
	for i := range f.Tasks {
		task := f.Tasks[i]
		if err := task.Validate(); err != nil {
			return err
		}
		s.mu.Lock()
		s.tasks[task.ID] = task
		s.mu.Unlock()
	}
	for viewer, ids := range f.Viewed {
		for _, id := range ids {
			if err := s.MarkViewed(ctx, viewer, id); err != nil {
				return err
			}
		}
	}
	return nil
}
