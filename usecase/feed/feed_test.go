package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/repository/memory"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type brokenViews struct{}

func (brokenViews) MarkViewed(context.Context, string, string) error { return errors.New("redis down") }
func (brokenViews) Viewed(context.Context, string, []string) (map[string]bool, error) {
	return nil, errors.New("redis down")
}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	if err := store.Seed(context.Background(), memory.DemoFixtures(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func storyIDs(items []domain.StoryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Task.ID)
	}
	return out
}

func TestFeed(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), store, nil)

	feed, err := uc.Feed(context.Background(), memory.DemoViewer)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	want := []string{"1", "2", "3", "4"}
	got := storyIDs(feed.Stories)
	if len(got) != len(want) {
		t.Fatalf("stories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stories = %v, want %v", got, want)
		}
	}
	if !feed.Stories[0].IsMyTask || feed.Stories[2].IsMyTask {
		t.Fatal("ownership flags are wrong")
	}
	if feed.Stories[2].Task.User.Nickname != "Friend 1" {
		t.Fatalf("friend task should carry its author, got %+v", feed.Stories[2].Task.User)
	}
	if !feed.Stories[3].Task.IsViewed {
		t.Fatal("task 4 was seeded as viewed")
	}
	if len(feed.MyOngoing) != 1 || feed.MyOngoing[0].ID != "1" {
		t.Fatalf("unexpected ongoing %+v", feed.MyOngoing)
	}
	if len(feed.FriendOngoing) != 1 || feed.FriendOngoing[0].ID != "3" {
		t.Fatalf("unexpected friend ongoing %+v", feed.FriendOngoing)
	}
}

func TestFeedRequiresViewer(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), store, nil)
	if _, err := uc.Feed(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestFeedSurvivesViewLookupFailure(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), brokenViews{}, nil)

	items, err := uc.Sequence(context.Background(), memory.DemoViewer)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	for _, item := range items {
		if item.Task.IsViewed {
			t.Fatalf("no task should be marked viewed, got %s", item.Task.ID)
		}
	}
}

func TestMarkViewed(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), store, nil)
	ctx := context.Background()

	if err := uc.MarkViewed(ctx, memory.DemoViewer, "3"); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	items, _ := uc.Sequence(ctx, memory.DemoViewer)
	if got := storyIDs(items); got[2] != "3" || !items[2].Task.IsViewed {
		t.Fatalf("viewed task should keep its start order among viewed, got %v", got)
	}

	if err := uc.MarkViewed(ctx, memory.DemoViewer, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkViewedOwnTaskIsNoop(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), brokenViews{}, nil)
	if err := uc.MarkViewed(context.Background(), memory.DemoViewer, "1"); err != nil {
		t.Fatalf("own task should not touch the view store, got %v", err)
	}
}

func TestMarkViewedHiddenTask(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	if err := store.Users().Upsert(ctx, &domain.User{ID: "user9", Username: "stranger"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	uc := New(store, store.Users(), store, nil)

	existing := uc.MarkViewed(ctx, "user9", "3")
	missing := uc.MarkViewed(ctx, "user9", "missing")
	if !errors.Is(existing, domain.ErrTaskNotFound) || !errors.Is(missing, domain.ErrTaskNotFound) {
		t.Fatalf("hidden and missing tasks should both be not found, got %v and %v", existing, missing)
	}
	viewed, err := store.Viewed(ctx, "user9", []string{"3"})
	if err != nil {
		t.Fatalf("viewed: %v", err)
	}
	if viewed["3"] {
		t.Fatal("no mark should be stored for a hidden task")
	}
}

func TestBuildStoriesOrder(t *testing.T) {
	at := func(m int) time.Time { return now.Add(-time.Duration(m) * time.Minute) }
	mine := []domain.Task{
		{ID: "old", StartTime: at(90)},
		{ID: "new", StartTime: at(5)},
	}
	friends := []domain.TaskWithUser{
		{Task: domain.Task{ID: "seen-recent", StartTime: at(1)}, IsViewed: true},
		{Task: domain.Task{ID: "unseen-old", StartTime: at(60)}},
		{Task: domain.Task{ID: "unseen-new", StartTime: at(10)}},
	}

	got := storyIDs(BuildStories(mine, friends))
	want := []string{"new", "old", "unseen-new", "unseen-old", "seen-recent"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildStoriesEmpty(t *testing.T) {
	if items := BuildStories(nil, nil); len(items) != 0 {
		t.Fatalf("expected no stories, got %d", len(items))
	}
}

func TestVisible(t *testing.T) {
	store := seeded(t)
	uc := New(store, store.Users(), store, nil)
	ctx := context.Background()

	own, err := uc.Visible(ctx, memory.DemoViewer, "1")
	if err != nil || !own.IsMyTask {
		t.Fatalf("own task: %+v %v", own, err)
	}
	friend, err := uc.Visible(ctx, memory.DemoViewer, "4")
	if err != nil || friend.IsMyTask || friend.Task.User.ID != "user3" || !friend.Task.IsViewed {
		t.Fatalf("friend task: %+v %v", friend, err)
	}

	// user2 and user3 are not friends with each other
	if _, err := uc.Visible(ctx, "user2", "4"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("stranger task should be hidden, got %v", err)
	}
}
