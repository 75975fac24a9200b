package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bourse/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Result   *Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Result == nil {
		return buf.String()
	}
	fmt.Fprintf(&buf, "\nEvent trace:\n")
	for _, round := range e.Result.Rounds() {
		for _, c := range round.Events {
			fmt.Fprintf(&buf, "  [round %d] %s %s (%s)\n", round.Round, c.Change, c.Event, c.Priority)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEventCount:
		return assertEventCount(result, a)
	case AssertEventOrder:
		return assertEventOrder(result, a)
	case AssertLevelPassed:
		return assertLevelPassed(result, a)
	case AssertMoney:
		return assertRange(result, a.Type, "money", result.Final.Money, a.Min, a.Max)
	case AssertQuote:
		for _, q := range result.Final.Quotes {
			if q.Name == a.Tradeable {
				return assertRange(result, a.Type, q.Name, q.Value, a.Min, a.Max)
			}
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s in play", a.Tradeable),
			Actual:   "not an active tradeable",
			Result:   result,
		}
	case AssertActiveTradeables:
		var names []string
		for _, q := range result.Final.Quotes {
			names = append(names, q.Name)
		}
		if !slices.Equal(names, a.Names) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%v", a.Names),
				Actual:   fmt.Sprintf("%v", names),
				Result:   result,
			}
		}
	case AssertCampaignComplete:
		if result.Final.Complete != *a.Value {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("complete=%t", *a.Value),
				Actual:   fmt.Sprintf("complete=%t", result.Final.Complete),
				Result:   result,
			}
		}
	case AssertStage:
		if result.Final.Stage != a.Stage {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("stage %d", a.Stage),
				Actual:   fmt.Sprintf("stage %d", result.Final.Stage),
				Result:   result,
			}
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

// assertEventCount counts the event's state changes of the given kind.
func assertEventCount(result *Result, a Assertion) error {
	change := a.Change
	if change == "" {
		change = store.KindAdmitted
	}

	count := 0
	for _, round := range result.Rounds() {
		for _, c := range round.Events {
			if c.Event == a.Event && c.Change == change {
				count++
			}
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s changes of %s", a.Count, change, a.Event),
			Actual:   fmt.Sprintf("%d", count),
			Result:   result,
		}
	}
	return nil
}

// assertEventOrder checks that the events first started in the given order.
// Other events may start in between.
func assertEventOrder(result *Result, a Assertion) error {
	var started []string
	for _, round := range result.Rounds() {
		for _, c := range round.Events {
			if c.Change == store.KindExpired || slices.Contains(started, c.Event) {
				continue
			}
			started = append(started, c.Event)
		}
	}

	last := -1
	for _, name := range a.Events {
		pos := slices.Index(started, name)
		if pos < 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("all events started: %v", a.Events),
				Actual:   fmt.Sprintf("%s never started", name),
				Result:   result,
			}
		}
		if pos < last {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual:   fmt.Sprintf("started: %v", started),
				Result:   result,
			}
		}
		last = pos
	}
	return nil
}

func assertLevelPassed(result *Result, a Assertion) error {
	var passed []string
	for _, c := range result.LevelChanges() {
		if c.Passed == a.Level {
			return nil
		}
		passed = append(passed, c.Passed)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("level %s passed", a.Level),
		Actual:   fmt.Sprintf("passed: %v", passed),
		Result:   result,
	}
}

func assertRange(result *Result, typ, what string, v float64, lo, hi *float64) error {
	if (lo == nil || v >= *lo) && (hi == nil || v <= *hi) {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s in %s", what, bounds(lo, hi)),
		Actual:   fmt.Sprintf("%g", v),
		Result:   result,
	}
}

func bounds(lo, hi *float64) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("[%g, %g]", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("[%g, inf)", *lo)
	default:
		return fmt.Sprintf("(-inf, %g]", *hi)
	}
}
