package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mindmap/internal/domain"
	"mindmap/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := r.db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS mindmaps (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mindmaps_user_updated ON mindmaps(user_id, updated_at DESC);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// GetMindMap retrieves a mind map by id
func (r *Repository) GetMindMap(ctx context.Context, id string) (*domain.MindMap, error) {
	var row mindMapRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+mindMapColumns+` FROM mindmaps WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mind map: %w", err)
	}
	return row.toDomain(), nil
}

// ListMindMaps returns a user's mind maps, most recently updated first
func (r *Repository) ListMindMaps(ctx context.Context, userID int64) ([]*domain.MindMap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mindMapColumns+` FROM mindmaps
		WHERE user_id = ?
		ORDER BY updated_at DESC, created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mind maps: %w", err)
	}
	defer rows.Close()

	maps := make([]*domain.MindMap, 0)
	for rows.Next() {
		var row mindMapRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan mind map: %w", err)
		}
		maps = append(maps, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mind maps: %w", err)
	}
	return maps, nil
}

// CreateMindMap inserts a new mind map. Zero timestamps are set to now.
func (r *Repository) CreateMindMap(ctx context.Context, m *domain.MindMap) error {
	now := r.now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mindmaps (`+mindMapColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		mindMapInsertArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to insert mind map: %w", err)
	}
	return nil
}

// UpdateMindMap replaces the title and content of an existing mind map
func (r *Repository) UpdateMindMap(ctx context.Context, m *domain.MindMap) error {
	m.UpdatedAt = r.now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE mindmaps SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		m.Title, stringToNull(m.Content), timeToMillis(m.UpdatedAt), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update mind map: %w", err)
	}
	return requireAffected(result, m.ID)
}

// DeleteMindMap removes a mind map
func (r *Repository) DeleteMindMap(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM mindmaps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mind map: %w", err)
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return nil
}
