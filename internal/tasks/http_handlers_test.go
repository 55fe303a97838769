package tasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/tasks"
	"ourtasker-backend/internal/testutil"
)

type fixture struct {
	store  *testutil.FakeTaskStore
	feed   *testutil.FakeActivityStore
	router http.Handler
	user   auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.NewFakeTaskStore(),
		feed:  testutil.NewFakeActivityStore(),
		user:  auth.User{ID: "user-1", Email: "ann@example.com", Name: "Ann"},
	}
	logger := testutil.DiscardLogger()
	h := tasks.NewHandler(f.store, activity.NewRecorder(f.feed, logger), logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), f.user)))
		})
	})
	r.Get("/tasks", h.List)
	r.Post("/tasks", h.Create)
	r.Get("/tasks/search", h.Search)
	r.Put("/tasks/{id}", h.Update)
	r.Delete("/tasks/{id}", h.Delete)
	r.Post("/tasks/{id}/comments", h.AddComment)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) tasks.Task {
	t.Helper()
	var body struct {
		Task tasks.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Task
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/tasks",
		`{"title":"  Write API docs ","priority":"high","dueDate":"2024-06-01","tags":[" Docs","docs","API",""]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	task := decodeTask(t, rec)
	assert.Equal(t, "Write API docs", task.Title)
	assert.Equal(t, tasks.StatusTodo, task.Status)
	assert.Equal(t, tasks.PriorityHigh, task.Priority)
	assert.Equal(t, "ann@example.com", task.Assignee)
	assert.Equal(t, []string{"docs", "api"}, task.Tags)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-06-01", task.DueDate.Format("2006-01-02"))

	assert.Equal(t, []activity.Type{activity.TaskCreated}, f.feed.Types())
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"priority":"low"}`},
		{"bad priority", `{"title":"x","priority":"urgent"}`},
		{"bad status", `{"title":"x","priority":"low","status":"blocked"}`},
		{"bad date", `{"title":"x","priority":"low","dueDate":"tomorrow"}`},
		{"malformed", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, f.feed.Types())
}

func TestCreateTaskAcceptsInProgressAlias(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/tasks", `{"title":"x","priority":"low","status":"in_progress"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, tasks.StatusInProgress, decodeTask(t, rec).Status)
}

func TestUpdateTaskCompletionRecordsActivity(t *testing.T) {
	f := newFixture(t)
	task := f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Ship", Status: tasks.StatusInProgress, Priority: tasks.PriorityHigh})

	rec := f.do(http.MethodPut, "/tasks/"+task.ID, `{"status":"done"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, tasks.StatusDone, decodeTask(t, rec).Status)
	assert.Equal(t, []activity.Type{activity.TaskUpdated, activity.TaskCompleted}, f.feed.Types())

	// already done: no second completion entry
	rec = f.do(http.MethodPut, "/tasks/"+task.ID, `{"status":"done"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []activity.Type{activity.TaskUpdated, activity.TaskCompleted, activity.TaskUpdated}, f.feed.Types())
}

func TestUpdateTaskDueDate(t *testing.T) {
	f := newFixture(t)
	task := f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Plan", Status: tasks.StatusTodo})

	rec := f.do(http.MethodPut, "/tasks/"+task.ID, `{"dueDate":"2024-03-05T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decodeTask(t, rec).DueDate)

	rec = f.do(http.MethodPut, "/tasks/"+task.ID, `{"dueDate":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeTask(t, rec).DueDate)
}

func TestUpdateTaskErrors(t *testing.T) {
	f := newFixture(t)
	mine := f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Mine"})
	theirs := f.store.AddTask(tasks.Task{UserID: "user-2", Title: "Theirs"})

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPut, "/tasks/"+theirs.ID, `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/tasks/"+mine.ID, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/tasks/"+mine.ID, `{"title":"   "}`).Code)
	assert.Empty(t, f.feed.Types())
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	task := f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Gone"})

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/tasks/"+task.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/tasks/"+task.ID, "").Code)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	task := f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Review"})

	rec := f.do(http.MethodPost, "/tasks/"+task.ID+"/comments", `{"text":"looks good","mentions":["bob"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []activity.Type{activity.CommentAdded}, f.feed.Types())

	got, err := f.store.Get(context.Background(), f.user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "looks good", got.Comments[0].Text)
	assert.Equal(t, f.user.ID, got.Comments[0].AuthorID)

	assert.Equal(t, http.StatusNotFound,
		f.do(http.MethodPost, "/tasks/missing/comments", `{"text":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(http.MethodPost, "/tasks/"+task.ID+"/comments", `{"text":""}`).Code)
}

func TestListTasksNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "first"})
	f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "second"})
	f.store.AddTask(tasks.Task{UserID: "user-2", Title: "other"})

	rec := f.do(http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tasks []tasks.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tasks, 2)
	assert.Equal(t, "second", body.Tasks[0].Title)
}

func TestSearchTasks(t *testing.T) {
	f := newFixture(t)
	f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Design landing page", Status: tasks.StatusTodo, Priority: tasks.PriorityHigh})
	f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Fix login", Description: "design review notes", Status: tasks.StatusDone, Priority: tasks.PriorityLow})
	f.store.AddTask(tasks.Task{UserID: f.user.ID, Title: "Unrelated", Status: tasks.StatusTodo, Priority: tasks.PriorityHigh})

	count := func(query string) int {
		rec := f.do(http.MethodGet, "/tasks/search?"+query, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Tasks []tasks.Task `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return len(body.Tasks)
	}

	assert.Equal(t, 2, count("q=DESIGN"))
	assert.Equal(t, 1, count("q=design&status=done"))
	assert.Equal(t, 2, count("q=design&status=all&priority=all"))
	assert.Equal(t, 2, count("priority=high"))
	assert.Equal(t, 3, count(""))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/tasks/search?status=blocked", "").Code)
}
