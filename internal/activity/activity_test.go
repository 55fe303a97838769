package activity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/testutil"
)

func TestRecorderSwallowsStoreErrors(t *testing.T) {
	store := testutil.NewFakeActivityStore()
	rec := activity.NewRecorder(store, testutil.DiscardLogger())

	rec.Record(context.Background(), "u1", activity.TaskCreated, "Created task", "t1")
	store.InsertErr = assert.AnError
	rec.Record(context.Background(), "u1", activity.TaskUpdated, "Updated task", "t1")

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, activity.TaskCreated, all[0].Type)
	assert.NotEmpty(t, all[0].ID)
	assert.False(t, all[0].CreatedAt.IsZero())
}

func TestListHandlerLimit(t *testing.T) {
	store := testutil.NewFakeActivityStore()
	rec := activity.NewRecorder(store, testutil.DiscardLogger())
	for i := 0; i < 60; i++ {
		rec.Record(context.Background(), "u1", activity.TaskCreated, fmt.Sprint("task ", i), "")
	}
	rec.Record(context.Background(), "u2", activity.TaskCreated, "someone else", "")

	h := activity.ListHandler(store, testutil.DiscardLogger())
	get := func(query string) (int, []activity.Activity) {
		req := httptest.NewRequest(http.MethodGet, "/api/activities"+query, nil)
		req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u1"}))
		w := httptest.NewRecorder()
		h(w, req)
		var body struct {
			Activities []activity.Activity `json:"activities"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		return w.Code, body.Activities
	}

	code, items := get("")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, items, 50)
	assert.Equal(t, "task 59", items[0].Description)

	_, items = get("?limit=5")
	assert.Len(t, items, 5)

	_, items = get("?limit=1000")
	assert.Len(t, items, 60)

	code, _ = get("?limit=abc")
	assert.Equal(t, http.StatusBadRequest, code)

	store.RecentErr = assert.AnError
	code, _ = get("")
	assert.Equal(t, http.StatusInternalServerError, code)
}
