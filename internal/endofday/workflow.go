// Package endofday drives the guided closing procedure as an explicit
// state machine. The HTTP layer only dispatches events; every legal
// transition and every side effect lives here, so the closing flow
// behaves the same no matter which screen drives it.
package endofday

import (
	"errors"
	"fmt"
	"sync"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/pkg/utils"
)

// State is one step of the closing procedure.
type State string

const (
	// StateIdle is the rest state. Nothing about the day is decided.
	StateIdle State = "idle"
	// StateBlocked means open tables prevent closing.
	StateBlocked State = "blocked"
	// StateConfirm shows the operator what is about to be closed.
	StateConfirm State = "confirm"
	// StateCashReconcile waits for the counted drawer amount.
	StateCashReconcile State = "cash_reconcile"
	// StateSuccess holds the finished Z-report until the operator
	// acknowledges it.
	StateSuccess State = "success"
	// StateError holds a failed execution. The counted cash is kept so
	// a retry does not ask the operator to count again.
	StateError State = "error"
)

// EventType names an operator action.
type EventType string

const (
	EventStart      EventType = "start"
	EventRetryCheck EventType = "retry_check"
	EventConfirm    EventType = "confirm"
	EventSubmitCash EventType = "submit_cash"
	EventRetry      EventType = "retry"
	EventCancel     EventType = "cancel"
)

// Event is one dispatched operator action. The cash fields are only
// read for EventSubmitCash: ActualCash is integer cents, while
// ActualCashInput takes the operator's raw decimal entry ("1250,50")
// and wins when both are set.
type Event struct {
	Type            EventType `json:"type" binding:"required"`
	ActualCash      int64     `json:"actual_cash"`
	ActualCashInput string    `json:"actual_cash_input"`
}

func (e Event) countedCash() int64 {
	if e.ActualCashInput != "" {
		return utils.ParseMoneyToCents(e.ActualCashInput)
	}
	return e.ActualCash
}

// Checker reports whether the day can be closed.
type Checker interface {
	CheckEndOfDay() (*models.EndOfDayCheckResult, error)
}

// TotalsProvider supplies the system-side figures for the confirm and
// reconcile screens.
type TotalsProvider interface {
	GetExpectedTotals() (*models.ExpectedDailyTotals, error)
}

// Executor performs the actual close once the operator has committed.
type Executor interface {
	ExecuteEndOfDay(actualCash int64) (*models.EndOfDayResult, error)
}

// Snapshot is the full externally visible workflow state after a
// dispatch.
type Snapshot struct {
	State      State                       `json:"state"`
	OpenTables []models.OpenTableInfo      `json:"open_tables,omitempty"`
	Expected   *models.ExpectedDailyTotals `json:"expected,omitempty"`
	Result     *models.EndOfDayResult      `json:"result,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

// ErrInvalidTransition is returned when an event is not legal in the
// current state. The workflow state does not change.
var ErrInvalidTransition = errors.New("event not allowed in current state")

// Workflow is safe for concurrent dispatch; events serialize on an
// internal mutex so two screens cannot close the same day twice.
type Workflow struct {
	mu       sync.Mutex
	state    State
	checker  Checker
	totals   TotalsProvider
	executor Executor

	openTables    []models.OpenTableInfo
	expected      *models.ExpectedDailyTotals
	result        *models.EndOfDayResult
	lastCash      int64
	cashSubmitted bool
	lastErr       error
}

func NewWorkflow(checker Checker, totals TotalsProvider, executor Executor) *Workflow {
	return &Workflow{
		state:    StateIdle,
		checker:  checker,
		totals:   totals,
		executor: executor,
	}
}

// Snapshot returns the current state without dispatching anything.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      w.state,
		OpenTables: w.openTables,
		Expected:   w.expected,
		Result:     w.result,
	}
	if w.lastErr != nil {
		snap.Error = w.lastErr.Error()
	}
	return snap
}

// Dispatch applies one event. It returns the resulting snapshot, or
// ErrInvalidTransition when the event is illegal in the current state.
// Collaborator failures move the workflow to StateError rather than
// failing the dispatch.
func (w *Workflow) Dispatch(event Event) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch event.Type {
	case EventStart:
		if w.state != StateIdle {
			return w.snapshotLocked(), w.transitionError(event)
		}
		w.runCheck()
	case EventRetryCheck:
		if w.state != StateBlocked {
			return w.snapshotLocked(), w.transitionError(event)
		}
		w.runCheck()
	case EventConfirm:
		if w.state != StateConfirm {
			return w.snapshotLocked(), w.transitionError(event)
		}
		w.state = StateCashReconcile
	case EventSubmitCash:
		if w.state != StateCashReconcile {
			return w.snapshotLocked(), w.transitionError(event)
		}
		w.lastCash = event.countedCash()
		w.cashSubmitted = true
		w.runExecute()
	case EventRetry:
		if w.state != StateError {
			return w.snapshotLocked(), w.transitionError(event)
		}
		// A failure before the drawer was counted retries the check;
		// a failed execution retries with the cash already counted.
		if w.cashSubmitted {
			w.runExecute()
		} else {
			w.runCheck()
		}
	case EventCancel:
		// Cancel is legal everywhere and always lands in idle. A day
		// already closed stays closed; cancel only resets the screen.
		w.reset()
	default:
		return w.snapshotLocked(), fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event.Type)
	}

	return w.snapshotLocked(), nil
}

func (w *Workflow) transitionError(event Event) error {
	return fmt.Errorf("%w: %q in state %q", ErrInvalidTransition, event.Type, w.state)
}

func (w *Workflow) reset() {
	w.state = StateIdle
	w.openTables = nil
	w.expected = nil
	w.result = nil
	w.lastCash = 0
	w.cashSubmitted = false
	w.lastErr = nil
}

// runCheck decides between blocked and confirm. The expected totals
// are loaded up front so the confirm screen can show them.
func (w *Workflow) runCheck() {
	w.lastErr = nil
	check, err := w.checker.CheckEndOfDay()
	if err != nil {
		w.state = StateError
		w.lastErr = err
		return
	}
	if !check.CanProceed {
		w.state = StateBlocked
		w.openTables = check.OpenTables
		return
	}
	w.openTables = nil

	expected, err := w.totals.GetExpectedTotals()
	if err != nil {
		w.state = StateError
		w.lastErr = err
		return
	}
	w.expected = expected
	w.state = StateConfirm
}

func (w *Workflow) runExecute() {
	w.lastErr = nil
	result, err := w.executor.ExecuteEndOfDay(w.lastCash)
	if err != nil {
		w.state = StateError
		w.lastErr = err
		return
	}
	w.result = result
	w.state = StateSuccess
}
