package store

import (
	"context"
	"fmt"
)

// BeginSession records a new session. Re-recording an existing ID is a no-op.
func (s *Store) BeginSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, difficulty, start_pack)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Seed, sess.Difficulty, sess.StartPack)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// RecordRound writes a round with its values and entries in one transaction.
// The session must exist (foreign key constraint). Recording the same round
// twice fails on the primary key.
func (s *Store) RecordRound(ctx context.Context, r Round) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record round: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rounds (session_id, round, money, stage, complete)
		VALUES (?, ?, ?, ?, ?)
	`, r.SessionID, r.Number, r.Money, r.Stage, r.Complete)
	if err != nil {
		return fmt.Errorf("record round %d: %w", r.Number, err)
	}

	for i, v := range r.Values {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO round_values (session_id, round, ord, tradeable, value, shares)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.SessionID, r.Number, i, v.Tradeable, v.Value, v.Shares)
		if err != nil {
			return fmt.Errorf("record round %d: value %q: %w", r.Number, v.Tradeable, err)
		}
	}

	for i, e := range r.Entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO round_entries (session_id, round, ord, kind, subject, detail, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.SessionID, r.Number, i, e.Kind, e.Subject, e.Detail, e.Amount)
		if err != nil {
			return fmt.Errorf("record round %d: entry %d: %w", r.Number, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record round %d: commit: %w", r.Number, err)
	}
	return nil
}
