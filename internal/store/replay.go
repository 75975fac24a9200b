package store

import (
	"context"
	"fmt"
)

// SessionState summarizes a journaled session, for resuming the round clock
// and for trace headers.
type SessionState struct {
	Session    Session
	Rounds     int
	LastRound  int64
	FinalMoney float64
	Stage      int
	IsComplete bool // True once a round recorded campaign completion
}

// GetSessionState reads the session row and the latest round.
func (s *Store) GetSessionState(ctx context.Context, sessionID string) (SessionState, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: %w", err)
	}
	state := SessionState{Session: sess}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(round), 0), COALESCE(MAX(complete), 0)
		FROM rounds
		WHERE session_id = ?
	`, sessionID).Scan(&state.Rounds, &state.LastRound, &state.IsComplete)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: %w", err)
	}
	if state.Rounds == 0 {
		return state, nil
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT money, stage FROM rounds WHERE session_id = ? AND round = ?
	`, sessionID, state.LastRound).Scan(&state.FinalMoney, &state.Stage)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: last round: %w", err)
	}
	return state, nil
}
