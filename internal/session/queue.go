package session

import (
	"database/sql"
	"errors"

	dbutil "cadence/internal/db"
)

// QueueState represents the saved play queue.
type QueueState struct {
	CurrentIndex int
	RepeatMode   int
	Shuffle      bool
	Speed        float64
	SongIDs      []string
}

// GetQueue returns the saved play queue, or an empty state if none was saved.
func (s *Store) GetQueue() (*QueueState, error) {
	var currentIndex, repeatMode int
	var shuffle bool
	var speed float64
	row := s.db.QueryRow(`SELECT current_index, repeat_mode, shuffle, speed FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex, &repeatMode, &shuffle, &speed)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1, Speed: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT song_id FROM queue_songs ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueueState{
		CurrentIndex: currentIndex,
		RepeatMode:   repeatMode,
		Shuffle:      shuffle,
		Speed:        speed,
		SongIDs:      ids,
	}, nil
}

// SaveQueue persists the play queue, replacing any previous state.
func (s *Store) SaveQueue(state QueueState) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_songs`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index, repeat_mode, shuffle, speed)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				speed = excluded.speed
		`, state.CurrentIndex, state.RepeatMode, state.Shuffle, state.Speed)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_songs (position, song_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range state.SongIDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
