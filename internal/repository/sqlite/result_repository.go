package sqlite

import (
	"fmt"
	"strings"

	"digitcam/internal/model"
)

// ResultRepository implements repository.ResultRepository for SQLite.
type ResultRepository struct {
	db *DB
}

// NewResultRepository creates a new SQLite result repository.
func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert adds a new result record to the database.
func (r *ResultRepository) Insert(entry *model.LogEntry) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO results (stamp, result, source, created_at)
		VALUES (?, ?, ?, ?)
	`, entry.Timestamp, entry.Result, string(entry.Source), entry.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple results in a single transaction.
func (r *ResultRepository) InsertBatch(entries []model.LogEntry) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO results (stamp, result, source, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Timestamp, e.Result, string(e.Source), e.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return tx.Commit()
}

// GetAll retrieves results newest first, based on filter criteria.
func (r *ResultRepository) GetAll(filter *model.ResultFilter) ([]model.LogEntry, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `SELECT id, stamp, result, source, created_at FROM results` + where + ` ORDER BY id DESC`

	if filter != nil && filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		var e model.LogEntry
		var source string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Result, &source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		e.Source = model.Source(source)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetTotalCount returns the number of results matching the filter.
func (r *ResultRepository) GetTotalCount(filter *model.ResultFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM results`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// DeleteAll removes every stored result.
func (r *ResultRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	return nil
}

func buildWhere(filter *model.ResultFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter != nil && filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, string(filter.Source))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
