package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while running a session.
//
// Runtime errors include:
//   - Counter drift: running-event counters disagree with the active events
//   - No level packs: nothing to play at session start
//   - Campaign complete: a round was requested after the last stage
//   - Not started: a round was requested before Start
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// Round is the round being played, if any.
	Round int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCounterDrift indicates running counters no longer match the
	// active events.
	ErrCodeCounterDrift RuntimeErrorCode = "COUNTER_DRIFT"

	// ErrCodeNoLevelPacks indicates no level pack could be started.
	ErrCodeNoLevelPacks RuntimeErrorCode = "NO_LEVEL_PACKS"

	// ErrCodeCampaignComplete indicates the last stage has been finished.
	ErrCodeCampaignComplete RuntimeErrorCode = "CAMPAIGN_COMPLETE"

	// ErrCodeNotStarted indicates Start has not been called.
	ErrCodeNotStarted RuntimeErrorCode = "NOT_STARTED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.SessionID != "" && e.Round > 0 {
		return fmt.Sprintf("%s: %s (session=%s, round=%d)", e.Code, e.Message, e.SessionID, e.Round)
	}
	if e.SessionID != "" {
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.SessionID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsCounterDrift returns true if the error is a counter drift error.
// Uses errors.As to handle wrapped errors.
func IsCounterDrift(err error) bool {
	return hasCode(err, ErrCodeCounterDrift)
}

// IsNoLevelPacks returns true if the session could not start for lack of packs.
func IsNoLevelPacks(err error) bool {
	return hasCode(err, ErrCodeNoLevelPacks)
}

// IsCampaignComplete returns true if the campaign has ended.
func IsCampaignComplete(err error) bool {
	return hasCode(err, ErrCodeCampaignComplete)
}

// IsNotStarted returns true if the session has not been started.
func IsNotStarted(err error) bool {
	return hasCode(err, ErrCodeNotStarted)
}

// NewCounterDriftError reports the first priority whose counter disagrees
// with the number of active events.
func NewCounterDriftError(sessionID string, round int64, priority string, counted, actual int) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeCounterDrift,
		Message:   fmt.Sprintf("running counter for %s is %d, %d events active", priority, counted, actual),
		SessionID: sessionID,
		Round:     round,
		Details: map[string]string{
			"priority": priority,
			"counted":  fmt.Sprintf("%d", counted),
			"actual":   fmt.Sprintf("%d", actual),
		},
	}
}

// NewNoLevelPacksError creates a RuntimeError for a session with nothing to play.
func NewNoLevelPacksError(stage int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNoLevelPacks,
		Message: fmt.Sprintf("no level pack available for stage %d", stage),
		Details: map[string]string{
			"stage": fmt.Sprintf("%d", stage),
		},
	}
}

// NewCampaignCompleteError creates a RuntimeError for a finished campaign.
func NewCampaignCompleteError(sessionID string, round int64) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeCampaignComplete,
		Message:   "last level stage finished",
		SessionID: sessionID,
		Round:     round,
	}
}

func newNotStartedError() *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNotStarted,
		Message: "session has not been started",
	}
}

// ErrInvalidIndex is returned for a trade on a tradeable index that is not
// in play.
var ErrInvalidIndex = errors.New("no active tradeable at index")
