// Package testutil provides in-memory stores for handler tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/tasks"
)

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeUserStore is an in-memory implementation of auth.UserStore.
type FakeUserStore struct {
	mu     sync.RWMutex
	users  map[string]auth.User
	hashes map[string]string // user id -> password hash

	// Error injection for testing
	CreateErr error
	LookupErr error
	DeleteErr error
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{
		users:  make(map[string]auth.User),
		hashes: make(map[string]string),
	}
}

// AddUser stores a user directly and returns it with an id filled in.
func (f *FakeUserStore) AddUser(email, name, hash string) auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := auth.User{ID: uuid.NewString(), Email: email, Name: name, CreatedAt: time.Now().UTC()}
	f.users[u.ID] = u
	f.hashes[u.ID] = hash
	return u
}

// Create implements auth.UserStore.
func (f *FakeUserStore) Create(ctx context.Context, u auth.User, hash string) (auth.User, error) {
	if f.CreateErr != nil {
		return auth.User{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return auth.User{}, auth.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = u
	f.hashes[u.ID] = hash
	return u, nil
}

// ByEmail implements auth.UserStore.
func (f *FakeUserStore) ByEmail(ctx context.Context, email string) (auth.User, string, error) {
	if f.LookupErr != nil {
		return auth.User{}, "", f.LookupErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, f.hashes[u.ID], nil
		}
	}
	return auth.User{}, "", auth.ErrUserNotFound
}

// ByID implements auth.UserStore.
func (f *FakeUserStore) ByID(ctx context.Context, id string) (auth.User, error) {
	if f.LookupErr != nil {
		return auth.User{}, f.LookupErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

// Delete implements auth.UserStore.
func (f *FakeUserStore) Delete(ctx context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	delete(f.hashes, id)
	return nil
}

// FakeActivityStore is an in-memory implementation of activity.Store.
type FakeActivityStore struct {
	mu    sync.Mutex
	items []activity.Activity

	InsertErr error
	RecentErr error
}

func NewFakeActivityStore() *FakeActivityStore {
	return &FakeActivityStore{}
}

// Insert implements activity.Store.
func (f *FakeActivityStore) Insert(ctx context.Context, a activity.Activity) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, a)
	return nil
}

// Recent implements activity.Store.
func (f *FakeActivityStore) Recent(ctx context.Context, userID string, limit int) ([]activity.Activity, error) {
	if f.RecentErr != nil {
		return nil, f.RecentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []activity.Activity{}
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		if f.items[i].UserID == userID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

// Types returns the recorded activity types in insertion order.
func (f *FakeActivityStore) Types() []activity.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activity.Type, len(f.items))
	for i, a := range f.items {
		out[i] = a.Type
	}
	return out
}

// All returns a copy of every recorded activity.
func (f *FakeActivityStore) All() []activity.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]activity.Activity(nil), f.items...)
}

// FakeTaskStore is an in-memory implementation of tasks.Store.
type FakeTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]tasks.Task
	seq   int

	ListErr   error
	CreateErr error
	UpdateErr error
}

func NewFakeTaskStore() *FakeTaskStore {
	return &FakeTaskStore{tasks: make(map[string]tasks.Task)}
}

// AddTask stores t as-is, assigning an id when it has none.
func (f *FakeTaskStore) AddTask(t tasks.Task) tasks.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(t)
}

func (f *FakeTaskStore) put(t tasks.Task) tasks.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Comments == nil {
		t.Comments = []tasks.Comment{}
	}
	if t.CreatedAt.IsZero() {
		// monotonic creation order for newest-first listing
		f.seq++
		t.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	f.tasks[t.ID] = t
	return t
}

func (f *FakeTaskStore) owned(userID string) []tasks.Task {
	out := []tasks.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// List implements tasks.Store.
func (f *FakeTaskStore) List(ctx context.Context, userID string) ([]tasks.Task, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.owned(userID), nil
}

// Get implements tasks.Store.
func (f *FakeTaskStore) Get(ctx context.Context, userID, id string) (tasks.Task, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return tasks.Task{}, tasks.ErrNotFound
	}
	return t, nil
}

// Create implements tasks.Store.
func (f *FakeTaskStore) Create(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	if f.CreateErr != nil {
		return tasks.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(t), nil
}

// Update implements tasks.Store.
func (f *FakeTaskStore) Update(ctx context.Context, userID, id string, p tasks.Patch) (tasks.Task, tasks.Status, error) {
	if f.UpdateErr != nil {
		return tasks.Task{}, "", f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return tasks.Task{}, "", tasks.ErrNotFound
	}
	prev := t.Status
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	f.tasks[id] = t
	return t, prev, nil
}

// Delete implements tasks.Store.
func (f *FakeTaskStore) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return tasks.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// AddComment implements tasks.Store.
func (f *FakeTaskStore) AddComment(ctx context.Context, userID string, c tasks.Comment) (tasks.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[c.TaskID]
	if !ok || t.UserID != userID {
		return tasks.Comment{}, tasks.ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Mentions == nil {
		c.Mentions = []string{}
	}
	c.CreatedAt = time.Now().UTC()
	t.Comments = append(t.Comments, c)
	f.tasks[t.ID] = t
	return c, nil
}

// Search implements tasks.Store.
func (f *FakeTaskStore) Search(ctx context.Context, userID string, sf tasks.SearchFilter) ([]tasks.Task, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(sf.Query))
	out := []tasks.Task{}
	for _, t := range f.owned(userID) {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		if sf.Status != "" && t.Status != sf.Status {
			continue
		}
		if sf.Priority != "" && t.Priority != sf.Priority {
			continue
		}
		if sf.Assignee != "" && t.Assignee != sf.Assignee {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
