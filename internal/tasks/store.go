package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store interface {
	List(ctx context.Context, userID string) ([]Task, error)
	Get(ctx context.Context, userID, id string) (Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	// Update applies p and returns the updated task and its status before the change.
	Update(ctx context.Context, userID, id string, p Patch) (Task, Status, error)
	Delete(ctx context.Context, userID, id string) error
	AddComment(ctx context.Context, userID string, c Comment) (Comment, error)
	Search(ctx context.Context, userID string, f SearchFilter) ([]Task, error)
}

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, assignee, tags, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (Task, error) {
	var (
		t        Task
		status   string
		priority string
		due      sql.NullTime
		tags     []string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &priority,
		&due, &t.Assignee, pq.Array(&tags), &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if tags == nil {
		tags = []string{}
	}
	t.Tags = tags
	t.Comments = []Comment{}
	return t, nil
}

func (s *PGStore) List(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	list, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *PGStore) Get(ctx context.Context, userID, id string) (Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Task{}, ErrNotFound
	}
	t, err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("select task: %w", err)
	}

	list := []Task{t}
	if err := s.attachComments(ctx, list); err != nil {
		return Task{}, err
	}
	return list[0], nil
}

func (s *PGStore) Create(ctx context.Context, t Task) (Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, assignee, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, t.ID, t.UserID, t.Title, t.Description, string(t.Status), string(t.Priority),
		t.DueDate, t.Assignee, pq.Array(t.Tags)).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.Comments = []Comment{}
	return t, nil
}

func (s *PGStore) Update(ctx context.Context, userID, id string, p Patch) (Task, Status, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Task{}, "", ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prev string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, id, userID).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, "", ErrNotFound
	}
	if err != nil {
		return Task{}, "", fmt.Errorf("lock task: %w", err)
	}

	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.Assignee != nil {
		add("assignee", *p.Assignee)
	}
	switch {
	case p.ClearDueDate:
		add("due_date", nil)
	case p.DueDate != nil:
		add("due_date", *p.DueDate)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE tasks SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+taskColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	t, err := scanTask(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Task{}, "", fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Task{}, "", fmt.Errorf("commit: %w", err)
	}

	list := []Task{t}
	if err := s.attachComments(ctx, list); err != nil {
		return Task{}, "", err
	}
	return list[0], Status(prev), nil
}

func (s *PGStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) AddComment(ctx context.Context, userID string, c Comment) (Comment, error) {
	if _, err := uuid.Parse(c.TaskID); err != nil {
		return Comment{}, ErrNotFound
	}
	var owned bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)
	`, c.TaskID, userID).Scan(&owned)
	if err != nil {
		return Comment{}, fmt.Errorf("check task: %w", err)
	}
	if !owned {
		return Comment{}, ErrNotFound
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Mentions == nil {
		c.Mentions = []string{}
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO comments (id, task_id, author_id, text, mentions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, c.ID, c.TaskID, c.AuthorID, c.Text, pq.Array(c.Mentions)).Scan(&c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// Search matches q against title and description, case-insensitively.
// Empty or "all" filter values are ignored.
func (s *PGStore) Search(ctx context.Context, userID string, f SearchFilter) ([]Task, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		add("(title ILIKE $%[1]d ESCAPE '\\' OR description ILIKE $%[1]d ESCAPE '\\')", "%"+escapeLike(q)+"%")
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Priority != "" {
		add("priority = $%d", string(f.Priority))
	}
	if f.Assignee != "" {
		add("assignee = $%d", f.Assignee)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	list, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func collectTasks(rows *sql.Rows) ([]Task, error) {
	defer rows.Close()
	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PGStore) attachComments(ctx context.Context, list []Task) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, t := range list {
		ids[i] = t.ID
		index[t.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, author_id, text, mentions, created_at
		FROM comments
		WHERE task_id = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c        Comment
			mentions []string
			created  time.Time
		)
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, pq.Array(&mentions), &created); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		if mentions == nil {
			mentions = []string{}
		}
		c.Mentions = mentions
		c.CreatedAt = created
		if i, ok := index[c.TaskID]; ok {
			list[i].Comments = append(list[i].Comments, c)
		}
	}
	return rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
