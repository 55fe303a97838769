// Package activity keeps the per-user feed of things that happened to tasks.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TaskCreated   Type = "task_created"
	TaskUpdated   Type = "task_updated"
	TaskCompleted Type = "task_completed"
	CommentAdded  Type = "comment_added"
	AISuggestion  Type = "ai_suggestion"
)

type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TaskID      string    `json:"task_id,omitempty"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	Insert(ctx context.Context, a Activity) error
	Recent(ctx context.Context, userID string, limit int) ([]Activity, error)
}

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, a Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, task_id, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, nullIfEmpty(a.TaskID), string(a.Type), a.Description, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *PGStore) Recent(ctx context.Context, userID string, limit int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, task_id, type, description, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	out := []Activity{}
	for rows.Next() {
		var (
			a      Activity
			taskID sql.NullString
			typ    string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &taskID, &typ, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.TaskID = taskID.String
		a.Type = Type(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Recorder writes feed entries on behalf of handlers. A failed insert is
// logged and swallowed: the feed never breaks the request that caused it.
type Recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, userID string, typ Type, description, taskID string) {
	a := Activity{
		ID:          uuid.NewString(),
		UserID:      userID,
		TaskID:      taskID,
		Type:        typ,
		Description: description,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.store.Insert(ctx, a); err != nil {
		r.logger.WarnContext(ctx, "activity insert failed",
			"type", string(typ), "user_id", userID, "task_id", taskID, "error", err)
	}
}
