package dberror

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructorsCaptureStack(t *testing.T) {
	err := LockTimeout("Acquire", "T3")
	if len(err.Stack) == 0 {
		t.Error("constructors should capture a non-empty stack")
	}
	if err.Code != CodeLockTimeout || err.Component != ComponentLockTable {
		t.Errorf("unexpected fields: %+v", err)
	}
}

func TestCategoryDerivesFromCode(t *testing.T) {
	cases := map[Code]Category{
		CodeLockTimeout:     CategoryTransient,
		CodePoolSaturated:   CategoryTransient,
		CodeExecutorFailure: CategorySystem,
		CodeMissingBlocks:   CategoryRequest,
		CodeMalformedExpr:   CategoryRequest,
	}
	for code, want := range cases {
		if got := code.Category(); got != want {
			t.Errorf("%s.Category() = %v, want %v", code, got, want)
		}
	}
}

func TestAbortiveCodes(t *testing.T) {
	abortive := []Code{CodeLockTimeout, CodeMissingBlocks, CodeExecutorFailure}
	for _, code := range abortive {
		if !code.Abortive() {
			t.Errorf("%s should end the owning transaction", code)
		}
	}
	if CodePoolSaturated.Abortive() {
		t.Error("PoolSaturated is raised before a transaction exists")
	}
	if CodeMalformedExpr.Abortive() {
		t.Error("a malformed token is passed through, not aborted on")
	}
}

func TestWrapPlainErrorProducesDBError(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(cause, CodeExecutorFailure, "Execute", ComponentWorker)

	if wrapped.Cause != cause {
		t.Error("Wrap should preserve the original error as Cause")
	}
	if wrapped.Operation != "Execute" || wrapped.Component != ComponentWorker {
		t.Errorf("unexpected operation/component: %+v", wrapped)
	}
}

func TestWrapExistingDBErrorFillsMissingFields(t *testing.T) {
	original := &DBError{Code: CodeLockTimeout}
	wrapped := Wrap(original, CodeMissingBlocks, "Acquire", ComponentLockTable)

	if wrapped != original {
		t.Error("wrapping an existing DBError should return the same instance")
	}
	if wrapped.Code != CodeLockTimeout {
		t.Error("wrapping must not overwrite the original code")
	}
	if wrapped.Operation != "Acquire" || wrapped.Component != ComponentLockTable {
		t.Errorf("Wrap should fill in unset operation/component, got %+v", wrapped)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, CodeMissingBlocks, "op", ComponentWorker) != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := LockTimeout("Acquire", "T7")

	if !errors.Is(err, LockTimeout("", "")) {
		t.Error("two lock timeouts should match regardless of context")
	}
	if errors.Is(err, MissingBlocks("users")) {
		t.Error("different codes must not match")
	}

	wrapped := Wrap(errors.New("io fault"), CodeExecutorFailure, "Execute", ComponentWorker)
	if !errors.Is(wrapped, ExecutorFailure(nil)) {
		t.Error("a wrapped executor failure should match by code")
	}
}

func TestErrorMessageIncludesCodeAndOperation(t *testing.T) {
	err := LockTimeout("Acquire", "T3")
	msg := err.Error()

	if !strings.Contains(msg, string(CodeLockTimeout)) {
		t.Errorf("error message should include the code: %s", msg)
	}
	if !strings.Contains(msg, "Acquire") {
		t.Errorf("error message should include the operation: %s", msg)
	}
	if !strings.Contains(msg, "T3") {
		t.Errorf("error message should include the detail: %s", msg)
	}
}

func TestConstructorHelpersSetExpectedCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *DBError
		code Code
	}{
		{"LockTimeout", LockTimeout("Acquire", "detail"), CodeLockTimeout},
		{"MissingBlocks", MissingBlocks("users"), CodeMissingBlocks},
		{"ExecutorFailure", ExecutorFailure(errors.New("boom")), CodeExecutorFailure},
		{"PoolSaturated", PoolSaturated(10, 10), CodePoolSaturated},
		{"MalformedExpression", MalformedExpression("??"), CodeMalformedExpr},
	}

	for _, c := range cases {
		if c.err.Code != c.code {
			t.Errorf("%s: Code = %q, want %q", c.name, c.err.Code, c.code)
		}
	}
}

func TestFormatStackIsEmptyWithoutCapture(t *testing.T) {
	err := &DBError{Code: CodeLockTimeout}
	if err.FormatStack() != "" {
		t.Error("FormatStack should be empty when Stack was never captured")
	}
}
