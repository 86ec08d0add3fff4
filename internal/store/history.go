package store

import (
	"time"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

// HistoryEntry is one finished download as recorded at its terminal state.
type HistoryEntry struct {
	TaskID    string    `json:"task_id"`
	OwnerID   int64     `json:"owner_id"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordOutcome implements engine.History. The task already finished, so a
// write failure only loses the history row; the caller logs it.
func (s *PersistentStore) RecordOutcome(task *domain.Task, state domain.TaskState, detail string) error {
	_, err := s.db.Exec(
		"INSERT INTO history (task_id, owner_id, url, state, detail) VALUES (?, ?, ?, ?, ?)",
		string(task.ID), int64(task.Owner), task.URL, string(state), detail,
	)
	return err
}

// RecentHistory returns the newest entries for the admin API.
func (s *PersistentStore) RecentHistory(limit int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		"SELECT task_id, owner_id, url, state, detail, created_at FROM history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.TaskID, &e.OwnerID, &e.URL, &e.State, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
