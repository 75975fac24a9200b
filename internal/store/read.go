package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Sessions returns every session ordered by ID. UUIDv7 IDs sort by creation
// time.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, difficulty, start_pack
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Seed, &sess.Difficulty, &sess.StartPack); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Session returns the session with the given ID.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, difficulty, start_pack FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Seed, &sess.Difficulty, &sess.StartPack)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	return sess, nil
}

// ReadRounds returns every round of a session with values and entries,
// ordered by round number.
//
// Returns an empty slice (not nil) if the session has no rounds.
func (s *Store) ReadRounds(ctx context.Context, sessionID string) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, money, stage, complete
		FROM rounds
		WHERE session_id = ?
		ORDER BY round ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}

	rounds := []Round{}
	index := make(map[int64]int)
	for rows.Next() {
		r := Round{SessionID: sessionID}
		if err := rows.Scan(&r.Number, &r.Money, &r.Stage, &r.Complete); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan round: %w", err)
		}
		index[r.Number] = len(rounds)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	rows.Close()

	if err := s.readValues(ctx, sessionID, rounds, index); err != nil {
		return nil, err
	}
	if err := s.readEntries(ctx, sessionID, rounds, index); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (s *Store) readValues(ctx context.Context, sessionID string, rounds []Round, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, tradeable, value, shares
		FROM round_values
		WHERE session_id = ?
		ORDER BY round ASC, ord ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n int64
			v Value
		)
		if err := rows.Scan(&n, &v.Tradeable, &v.Value, &v.Shares); err != nil {
			return fmt.Errorf("scan value: %w", err)
		}
		i := index[n]
		rounds[i].Values = append(rounds[i].Values, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate values: %w", err)
	}
	return nil
}

func (s *Store) readEntries(ctx context.Context, sessionID string, rounds []Round, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, kind, subject, detail, amount
		FROM round_entries
		WHERE session_id = ?
		ORDER BY round ASC, ord ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n int64
			e Entry
		)
		if err := rows.Scan(&n, &e.Kind, &e.Subject, &e.Detail, &e.Amount); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		i := index[n]
		rounds[i].Entries = append(rounds[i].Entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	return nil
}

// ValueHistory returns a tradeable's recorded value per round.
func (s *Store) ValueHistory(ctx context.Context, sessionID, tradeable string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value
		FROM round_values
		WHERE session_id = ? AND tradeable = ?
		ORDER BY round ASC
	`, sessionID, tradeable)
	if err != nil {
		return nil, fmt.Errorf("query value history: %w", err)
	}
	defer rows.Close()

	history := []float64{}
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value history: %w", err)
		}
		history = append(history, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate value history: %w", err)
	}
	return history, nil
}
