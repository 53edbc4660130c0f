// Package sessions persists deliberation sessions.
//
// The full session aggregate (agents, iterations, budget) is stored as one
// JSON document per row; the hot list/filter fields are denormalized into
// real columns so listing never deserializes whole sessions.
package sessions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"anjoman/internal/models"
	"anjoman/internal/store"
)

// Store handles session CRUD on SQLite.
type Store struct {
	db *store.DB
}

// NewStore creates a session store.
func NewStore(db *store.DB) *Store {
	return &Store{db: db}
}

// NewSessionID mints a session id. The timestamp prefix keeps ids roughly
// sortable; the uuid suffix keeps them unique.
func NewSessionID() string {
	return fmt.Sprintf("anj-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}

// Save upserts the full session. Denormalized columns are rewritten from the
// aggregate on every save.
func (s *Store) Save(session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var totalCost float64
	for _, it := range session.Iterations {
		totalCost += it.MessageCost()
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, created_at, updated_at, issue, status, total_cost, iteration_count, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			issue = excluded.issue,
			status = excluded.status,
			total_cost = excluded.total_cost,
			iteration_count = excluded.iteration_count,
			data = excluded.data
	`, session.SessionID, session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		session.Issue, string(session.Status), totalCost, len(session.Iterations), string(data))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load fetches a session by id. Returns nil, nil when it does not exist.
func (s *Store) Load(id string) (*models.Session, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// List returns lightweight session projections, newest first.
func (s *Store) List() ([]models.SessionListItem, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, issue, status, total_cost, iteration_count
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	items := []models.SessionListItem{}
	for rows.Next() {
		var item models.SessionListItem
		var createdAt int64
		if err := rows.Scan(&item.SessionID, &createdAt, &item.Issue, &item.Status,
			&item.TotalCost, &item.IterationCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		item.CreatedAt = time.Unix(createdAt, 0).UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes a session. Returns false when no row matched.
func (s *Store) Delete(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus flips the status of a stored session, both in the document
// and in the denormalized column.
func (s *Store) UpdateStatus(id string, status models.SessionStatus) (*models.Session, error) {
	session, err := s.Load(id)
	if err != nil || session == nil {
		return nil, err
	}
	session.Status = status
	session.UpdatedAt = time.Now().UTC()
	if err := s.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}
