package endofday

import (
	"errors"
	"testing"

	"cafe_pos_backend/internal/models"
)

type fakeChecker struct {
	result *models.EndOfDayCheckResult
	err    error
}

func (f *fakeChecker) CheckEndOfDay() (*models.EndOfDayCheckResult, error) {
	return f.result, f.err
}

type fakeTotals struct {
	totals *models.ExpectedDailyTotals
	err    error
}

func (f *fakeTotals) GetExpectedTotals() (*models.ExpectedDailyTotals, error) {
	return f.totals, f.err
}

type fakeExecutor struct {
	result   *models.EndOfDayResult
	err      error
	calls    int
	lastCash int64
}

func (f *fakeExecutor) ExecuteEndOfDay(actualCash int64) (*models.EndOfDayResult, error) {
	f.calls++
	f.lastCash = actualCash
	return f.result, f.err
}

func clearCheck() *fakeChecker {
	return &fakeChecker{result: &models.EndOfDayCheckResult{CanProceed: true, OpenTables: []models.OpenTableInfo{}}}
}

func someTotals() *fakeTotals {
	return &fakeTotals{totals: &models.ExpectedDailyTotals{Revenue: 50000, Cash: 30000, Card: 20000, Expenses: 5000}}
}

func TestWorkflowHappyPath(t *testing.T) {
	executor := &fakeExecutor{result: &models.EndOfDayResult{ZReport: &models.DailySummary{TotalRevenue: 50000}}}
	w := NewWorkflow(clearCheck(), someTotals(), executor)

	snap, err := w.Dispatch(Event{Type: EventStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.State != StateConfirm {
		t.Fatalf("after start: state = %q, want %q", snap.State, StateConfirm)
	}
	if snap.Expected == nil || snap.Expected.Cash != 30000 {
		t.Fatalf("expected totals not loaded: %+v", snap.Expected)
	}

	snap, err = w.Dispatch(Event{Type: EventConfirm})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if snap.State != StateCashReconcile {
		t.Fatalf("after confirm: state = %q, want %q", snap.State, StateCashReconcile)
	}

	snap, err = w.Dispatch(Event{Type: EventSubmitCash, ActualCash: 29500})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.State != StateSuccess {
		t.Fatalf("after submit: state = %q, want %q", snap.State, StateSuccess)
	}
	if executor.calls != 1 || executor.lastCash != 29500 {
		t.Errorf("executor called %d times with %d, want once with 29500", executor.calls, executor.lastCash)
	}
	if snap.Result == nil || snap.Result.ZReport.TotalRevenue != 50000 {
		t.Errorf("result not surfaced: %+v", snap.Result)
	}

	// Acknowledge and return to rest.
	snap, err = w.Dispatch(Event{Type: EventCancel})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if snap.State != StateIdle || snap.Result != nil {
		t.Errorf("after cancel: %+v, want clean idle", snap)
	}
}

func TestWorkflowBlockedUntilTablesClose(t *testing.T) {
	checker := &fakeChecker{result: &models.EndOfDayCheckResult{
		CanProceed: false,
		OpenTables: []models.OpenTableInfo{{TableID: "t1", TableName: "Masa 3", OrderID: "o1", TotalAmount: 12000}},
	}}
	w := NewWorkflow(checker, someTotals(), &fakeExecutor{})

	snap, err := w.Dispatch(Event{Type: EventStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.State != StateBlocked {
		t.Fatalf("state = %q, want %q", snap.State, StateBlocked)
	}
	if len(snap.OpenTables) != 1 || snap.OpenTables[0].TableName != "Masa 3" {
		t.Fatalf("open tables not surfaced: %+v", snap.OpenTables)
	}

	// Confirm is not legal while blocked.
	if _, err := w.Dispatch(Event{Type: EventConfirm}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("confirm while blocked: err = %v, want ErrInvalidTransition", err)
	}

	// Tables settle, retrying the check moves on.
	checker.result = &models.EndOfDayCheckResult{CanProceed: true, OpenTables: []models.OpenTableInfo{}}
	snap, err = w.Dispatch(Event{Type: EventRetryCheck})
	if err != nil {
		t.Fatalf("retry check: %v", err)
	}
	if snap.State != StateConfirm {
		t.Errorf("state = %q, want %q", snap.State, StateConfirm)
	}
	if len(snap.OpenTables) != 0 {
		t.Errorf("open tables should clear, got %+v", snap.OpenTables)
	}
}

func TestWorkflowExecuteFailureAndRetry(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("pg_dump exploded")}
	w := NewWorkflow(clearCheck(), someTotals(), executor)

	mustDispatch(t, w, Event{Type: EventStart})
	mustDispatch(t, w, Event{Type: EventConfirm})
	snap, err := w.Dispatch(Event{Type: EventSubmitCash, ActualCash: 10000})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.State != StateError {
		t.Fatalf("state = %q, want %q", snap.State, StateError)
	}
	if snap.Error == "" {
		t.Error("error message missing from snapshot")
	}

	// Retry reuses the counted cash without asking again.
	executor.err = nil
	executor.result = &models.EndOfDayResult{ZReport: &models.DailySummary{}}
	snap, err = w.Dispatch(Event{Type: EventRetry})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if snap.State != StateSuccess {
		t.Errorf("state = %q, want %q", snap.State, StateSuccess)
	}
	if executor.calls != 2 || executor.lastCash != 10000 {
		t.Errorf("retry used cash %d over %d calls, want 10000 twice", executor.lastCash, executor.calls)
	}
	if snap.Error != "" {
		t.Errorf("stale error survived retry: %q", snap.Error)
	}
}

func TestWorkflowCheckFailureRetriesCheck(t *testing.T) {
	checker := &fakeChecker{err: errors.New("database gone")}
	executor := &fakeExecutor{}
	w := NewWorkflow(checker, someTotals(), executor)

	snap, err := w.Dispatch(Event{Type: EventStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.State != StateError {
		t.Fatalf("state = %q, want %q", snap.State, StateError)
	}

	// No cash was counted yet, so retry must rerun the check rather
	// than jump to execution.
	checker.err = nil
	checker.result = &models.EndOfDayCheckResult{CanProceed: true, OpenTables: []models.OpenTableInfo{}}
	snap, err = w.Dispatch(Event{Type: EventRetry})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if snap.State != StateConfirm {
		t.Errorf("state = %q, want %q", snap.State, StateConfirm)
	}
	if executor.calls != 0 {
		t.Errorf("executor ran %d times before cash was counted", executor.calls)
	}
}

func TestWorkflowAcceptsDecimalCashInput(t *testing.T) {
	executor := &fakeExecutor{result: &models.EndOfDayResult{ZReport: &models.DailySummary{}}}
	w := NewWorkflow(clearCheck(), someTotals(), executor)

	mustDispatch(t, w, Event{Type: EventStart})
	mustDispatch(t, w, Event{Type: EventConfirm})
	mustDispatch(t, w, Event{Type: EventSubmitCash, ActualCashInput: "1250,50"})

	if executor.lastCash != 125050 {
		t.Errorf("executor got %d cents, want 125050", executor.lastCash)
	}
}

func TestWorkflowCancelFromAnyState(t *testing.T) {
	w := NewWorkflow(clearCheck(), someTotals(), &fakeExecutor{result: &models.EndOfDayResult{}})

	for _, prepare := range []func(){
		func() {},
		func() { mustDispatch(t, w, Event{Type: EventStart}) },
		func() {
			mustDispatch(t, w, Event{Type: EventStart})
			mustDispatch(t, w, Event{Type: EventConfirm})
		},
	} {
		prepare()
		snap, err := w.Dispatch(Event{Type: EventCancel})
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if snap.State != StateIdle {
			t.Fatalf("state = %q, want %q", snap.State, StateIdle)
		}
	}
}

func TestWorkflowRejectsOutOfOrderEvents(t *testing.T) {
	w := NewWorkflow(clearCheck(), someTotals(), &fakeExecutor{})

	illegal := []Event{
		{Type: EventConfirm},
		{Type: EventSubmitCash, ActualCash: 100},
		{Type: EventRetry},
		{Type: EventRetryCheck},
		{Type: "nonsense"},
	}
	for _, event := range illegal {
		snap, err := w.Dispatch(event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%q in idle: err = %v, want ErrInvalidTransition", event.Type, err)
		}
		if snap.State != StateIdle {
			t.Errorf("%q in idle moved state to %q", event.Type, snap.State)
		}
	}

	// Double start is rejected once the flow is underway.
	mustDispatch(t, w, Event{Type: EventStart})
	if _, err := w.Dispatch(Event{Type: EventStart}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second start: err = %v, want ErrInvalidTransition", err)
	}
}

func mustDispatch(t *testing.T, w *Workflow, event Event) Snapshot {
	t.Helper()
	snap, err := w.Dispatch(event)
	if err != nil {
		t.Fatalf("dispatch %q: %v", event.Type, err)
	}
	return snap
}
