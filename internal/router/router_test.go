package router_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskproof/api/handler"
	"github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/infrastructure/monitor"
	"github.com/fastygo/taskproof/internal/middleware"
	"github.com/fastygo/taskproof/internal/router"
	"github.com/fastygo/taskproof/pkg/httpcontext"
	"github.com/fastygo/taskproof/repository/memory"
	captureUC "github.com/fastygo/taskproof/usecase/capture"
	feedUC "github.com/fastygo/taskproof/usecase/feed"
	profileUC "github.com/fastygo/taskproof/usecase/profile"
	taskUC "github.com/fastygo/taskproof/usecase/task"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	} `json:"meta"`
}

type server struct {
	handler fasthttp.RequestHandler
	store   *memory.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memory.New()
	if err := store.Seed(context.Background(), memory.DemoFixtures(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock := func() time.Time { return now }
	adapter := httpcontext.NewAdapter(time.Second)

	tasks := taskUC.New(store, store.Users(), nil, nil, taskUC.WithClock(clock))
	feed := feedUC.New(store, store.Users(), store, nil)
	camera := capture.NewSimulated(capture.SimulatedConfig{BaseURL: "https://img.test"}, nil)
	opts := apiHandler.ProgressOptions{Now: clock}

	r := router.New(router.Handlers{
		Feed:    apiHandler.NewFeedHandler(feed, opts, adapter, nil),
		Task:    apiHandler.NewTaskHandler(tasks, feed, opts, adapter, nil),
		Profile: apiHandler.NewProfileHandler(profileUC.New(store.Users(), nil, nil), adapter, nil),
		Capture: apiHandler.NewCaptureHandler(captureUC.New(camera, tasks, nil), adapter, nil),
		Health:  apiHandler.NewHealthHandler(staticStatus{PostgreSQL: true}, adapter, nil),
	}, middleware.HeaderIdentity())
	return &server{handler: r.Handler, store: store}
}

func (s *server) do(t *testing.T, method, uri, user, body string) (int, envelope) {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if user != "" {
		ctx.Request.Header.Set("X-User-ID", user)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.handler(ctx)

	var env envelope
	if len(ctx.Response.Body()) > 0 {
		if err := sonic.Unmarshal(ctx.Response.Body(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, uri, ctx.Response.Body(), err)
		}
	}
	return ctx.Response.StatusCode(), env
}

func decode(t *testing.T, raw []byte, dst interface{}) {
	t.Helper()
	if err := sonic.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	if status, env := s.do(t, "GET", "/health", "", ""); status != 200 || env.Status != "success" {
		t.Fatalf("health: %d %+v", status, env)
	}
}

func TestRequiresIdentity(t *testing.T) {
	s := newServer(t)
	if status, env := s.do(t, "GET", "/api/v1/feed", "", ""); status != 401 || env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401 envelope, got %d %+v", status, env)
	}
}

func TestFeed(t *testing.T) {
	s := newServer(t)
	status, env := s.do(t, "GET", "/api/v1/feed", "user1", "")
	if status != 200 {
		t.Fatalf("feed: %d %+v", status, env)
	}
	var feed struct {
		Stories []struct {
			Task struct {
				ID string `json:"id"`
			} `json:"task"`
			IsMyTask    bool   `json:"is_my_task"`
			StatusColor string `json:"status_color"`
			Progress    struct {
				Percentage int `json:"percentage"`
			} `json:"progress"`
		} `json:"stories"`
	}
	decode(t, env.Data, &feed)
	if len(feed.Stories) != 4 || feed.Stories[0].Task.ID != "1" {
		t.Fatalf("unexpected stories %+v", feed.Stories)
	}
	// 20 of 30 minutes elapsed
	if feed.Stories[0].Progress.Percentage != 66 || feed.Stories[0].StatusColor != "#2196F3" {
		t.Fatalf("unexpected first story %+v", feed.Stories[0])
	}
}

func TestSwipe(t *testing.T) {
	s := newServer(t)
	cases := []struct {
		body      string
		direction string
		taskID    string
	}{
		{`{"task_id":"1","translation":150}`, "previous", "4"},
		{`{"task_id":"1","translation":-150}`, "next", "2"},
		{`{"task_id":"1","translation":100}`, "none", ""},
	}
	for _, tc := range cases {
		status, env := s.do(t, "POST", "/api/v1/feed/swipe", "user1", tc.body)
		if status != 200 {
			t.Fatalf("swipe %s: %d %+v", tc.body, status, env)
		}
		var resp struct {
			Direction string `json:"direction"`
			Navigated bool   `json:"navigated"`
			Route     *struct {
				Destination string `json:"destination"`
				TaskID      string `json:"task_id"`
			} `json:"route"`
		}
		decode(t, env.Data, &resp)
		if resp.Direction != tc.direction {
			t.Fatalf("swipe %s: direction %s", tc.body, resp.Direction)
		}
		if tc.taskID == "" {
			if resp.Navigated || resp.Route != nil {
				t.Fatalf("swipe %s should not navigate", tc.body)
			}
			continue
		}
		if resp.Route == nil || resp.Route.Destination != "detail" || resp.Route.TaskID != tc.taskID {
			t.Fatalf("swipe %s: route %+v", tc.body, resp.Route)
		}
	}

	if status, env := s.do(t, "POST", "/api/v1/feed/swipe", "user1", `{"task_id":"nope","translation":150}`); status != 404 || env.Code != "NOT_FOUND" {
		t.Fatalf("unknown task: %d %+v", status, env)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, "POST", "/api/v1/tasks", "user1", `{"title":"","target_minutes":0}`)
	if status != 400 || env.Code != "INVALID" || len(env.Meta.Fields) < 3 {
		t.Fatalf("validation: %d %+v", status, env)
	}

	status, env = s.do(t, "POST", "/api/v1/tasks", "user1", `{"title":"Stretch","target_minutes":15,"start_image":"s.png"}`)
	if status != 201 {
		t.Fatalf("create: %d %+v", status, env)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &created)

	status, env = s.do(t, "GET", "/api/v1/tasks/"+created.ID+"/progress", "user1", "")
	if status != 200 {
		t.Fatalf("progress: %d %+v", status, env)
	}
	var snap struct {
		Percentage int    `json:"percentage"`
		Elapsed    string `json:"elapsed"`
	}
	decode(t, env.Data, &snap)
	if snap.Percentage != 0 || snap.Elapsed != "+ 00:00:00" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	if status, env = s.do(t, "DELETE", "/api/v1/tasks/"+created.ID, "user1", ""); status != 409 {
		t.Fatalf("delete active: %d %+v", status, env)
	}
	if status, env = s.do(t, "POST", "/api/v1/tasks/"+created.ID+"/complete", "user2", `{"end_image":"e.png"}`); status != 403 {
		t.Fatalf("complete by stranger: %d %+v", status, env)
	}
	if status, env = s.do(t, "POST", "/api/v1/tasks/"+created.ID+"/complete", "user1", `{"end_image":"e.png"}`); status != 200 {
		t.Fatalf("complete: %d %+v", status, env)
	}
	if status, env = s.do(t, "DELETE", "/api/v1/tasks/"+created.ID, "user1", ""); status != 204 {
		t.Fatalf("delete: %d %+v", status, env)
	}
	if status, _ = s.do(t, "GET", "/api/v1/tasks/"+created.ID, "user1", ""); status != 404 {
		t.Fatalf("deleted task should be gone, got %d", status)
	}
}

func TestTaskVisibility(t *testing.T) {
	s := newServer(t)
	if status, env := s.do(t, "GET", "/api/v1/tasks/3", "user1", ""); status != 200 {
		t.Fatalf("friend task: %d %+v", status, env)
	}
	if status, _ := s.do(t, "GET", "/api/v1/tasks/4", "user2", ""); status != 404 {
		t.Fatalf("stranger task should be hidden, got %d", status)
	}
	if status, _ := s.do(t, "GET", "/api/v1/tasks?state=bogus", "user1", ""); status != 400 {
		t.Fatalf("bad state should be rejected, got %d", status)
	}
}

// user2 and user3 are not friends; both are friends of user1.
func TestHiddenTaskWrites(t *testing.T) {
	s := newServer(t)
	cases := []struct {
		name, method, uri, user, body string
		want                          int
	}{
		{"mark viewed", "POST", "/api/v1/feed/4/viewed", "user2", "", 404},
		{"mark viewed missing", "POST", "/api/v1/feed/nope/viewed", "user2", "", 404},
		{"delete", "DELETE", "/api/v1/tasks/4", "user2", "", 404},
		{"abandon", "POST", "/api/v1/tasks/3/abandon", "user3", "", 404},
		{"complete", "POST", "/api/v1/tasks/3/complete", "user3", `{"end_image":"end.png"}`, 404},
		{"capture", "POST", "/api/v1/capture", "user3", `{"mode":"complete","task_id":"3"}`, 404},
		{"friend abandon", "POST", "/api/v1/tasks/1/abandon", "user2", "", 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if status, env := s.do(t, tc.method, tc.uri, tc.user, tc.body); status != tc.want {
				t.Fatalf("expected %d, got %d %+v", tc.want, status, env)
			}
		})
	}
	viewed, _ := s.store.Viewed(context.Background(), "user2", []string{"4"})
	if viewed["4"] {
		t.Fatal("hidden task should not be marked viewed")
	}
}

func TestCaptureFlow(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, "POST", "/api/v1/capture", "user1", `{"mode":"complete","task_id":"1"}`)
	if status != 200 {
		t.Fatalf("capture: %d %+v", status, env)
	}
	var photo struct {
		Photo struct {
			URI string `json:"uri"`
		} `json:"photo"`
	}
	decode(t, env.Data, &photo)

	body := `{"mode":"complete","task_id":"1","uri":"` + photo.Photo.URI + `"}`
	status, env = s.do(t, "POST", "/api/v1/capture/confirm", "user1", body)
	if status != 200 {
		t.Fatalf("confirm: %d %+v", status, env)
	}
	var res struct {
		Next struct {
			Destination string `json:"destination"`
		} `json:"next"`
	}
	decode(t, env.Data, &res)
	if res.Next.Destination != "main" {
		t.Fatalf("expected main, got %+v", res)
	}

	stored, _ := s.store.GetByID(context.Background(), "1")
	if !stored.IsCompleted || stored.EndImage != photo.Photo.URI {
		t.Fatalf("task not completed %+v", stored)
	}

	if status, env = s.do(t, "POST", "/api/v1/capture", "user1", `{"mode":"video"}`); status != 400 {
		t.Fatalf("bad mode: %d %+v", status, env)
	}
}

func TestProfileAndFriends(t *testing.T) {
	s := newServer(t)
	if status, env := s.do(t, "PUT", "/api/v1/profile", "user1", `{"username":"me","nickname":"Morning Me"}`); status != 200 {
		t.Fatalf("update: %d %+v", status, env)
	}
	if status, env := s.do(t, "POST", "/api/v1/friends/user3", "user2", ""); status != 201 {
		t.Fatalf("add friend: %d %+v", status, env)
	}
	status, env := s.do(t, "GET", "/api/v1/friends", "user2", "")
	var friends []struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &friends)
	if status != 200 || len(friends) != 2 {
		t.Fatalf("friends: %d %+v", status, friends)
	}
	if status, _ := s.do(t, "PUT", "/api/v1/profile", "user1", `not json`); status != 400 {
		t.Fatalf("bad body should be rejected, got %d", status)
	}
}
