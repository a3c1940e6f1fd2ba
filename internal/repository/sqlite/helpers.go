package sqlite

import (
	"database/sql"
	"time"

	"mindmap/internal/domain"
)

// ============================================================================
// Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeToMillis stores times as Unix milliseconds so ordering is numeric
func timeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// millisToTime converts stored Unix milliseconds back to UTC time
func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ============================================================================
// Mind Map Row Scanner
// ============================================================================
//
// Column order must match between mindMapColumns, scanArgs() and every
// SELECT using mindMapColumns. New columns are APPENDED.

// mindMapRow holds all columns from a mind map query for scanning
type mindMapRow struct {
	ID        string
	UserID    int64
	Title     string
	Content   sql.NullString
	CreatedAt int64
	UpdatedAt int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match mindMapColumns order exactly:
// id, user_id, title, content, created_at, updated_at
func (r *mindMapRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.UserID,    // 2
		&r.Title,     // 3
		&r.Content,   // 4
		&r.CreatedAt, // 5
		&r.UpdatedAt, // 6
	}
}

// toDomain converts the scanned row to a domain.MindMap
func (r *mindMapRow) toDomain() *domain.MindMap {
	return &domain.MindMap{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   nullToString(r.Content),
		CreatedAt: millisToTime(r.CreatedAt),
		UpdatedAt: millisToTime(r.UpdatedAt),
	}
}

// mindMapColumns returns the SELECT column list for mind map queries
const mindMapColumns = `id, user_id, title, content, created_at, updated_at`

// mindMapInsertArgs prepares arguments for mind map INSERT
// Returns: id, user_id, title, content, created_at, updated_at
func mindMapInsertArgs(m *domain.MindMap) []interface{} {
	return []interface{}{
		m.ID,
		m.UserID,
		m.Title,
		stringToNull(m.Content),
		timeToMillis(m.CreatedAt),
		timeToMillis(m.UpdatedAt),
	}
}
