package dberror

import (
	"fmt"
	"runtime"
	"strings"
)

// Code identifies one of the error kinds the lock, txn, and raopt packages
// raise. Callers branch on the code (or errors.Is against a constructor's
// result), never on distinct Go types.
type Code string

const (
	CodeLockTimeout     Code = "LOCK_TIMEOUT"
	CodeMissingBlocks   Code = "MISSING_BLOCKS"
	CodeExecutorFailure Code = "EXECUTOR_FAILURE"
	CodePoolSaturated   Code = "POOL_SATURATED"
	CodeMalformedExpr   Code = "MALFORMED_EXPRESSION"
)

// Category classifies a code by what the caller can do about it.
type Category int

const (
	// CategoryRequest marks errors the submitted request itself caused —
	// a command naming a table with no blocks, a malformed expression
	// token. Fixable by changing the request, not by retrying it.
	CategoryRequest Category = iota

	// CategoryTransient marks errors that may clear on a resubmit, such
	// as a lock-wait timeout or a saturated worker pool. Retry the whole
	// transaction, with backoff under contention.
	CategoryTransient

	// CategorySystem marks failures outside the transaction's control —
	// the executor collaborator reporting failure — that need operator
	// attention rather than a retry.
	CategorySystem
)

// Category maps a code to its handling class.
func (c Code) Category() Category {
	switch c {
	case CodeLockTimeout, CodePoolSaturated:
		return CategoryTransient
	case CodeExecutorFailure:
		return CategorySystem
	default:
		return CategoryRequest
	}
}

// Abortive reports whether an error of this code ends the owning
// transaction. PoolSaturated is raised before a transaction exists, and a
// malformed expression token is passed through by the rewriter rather than
// failing anything; every other code means the worker has aborted and
// released its locks.
func (c Code) Abortive() bool {
	switch c {
	case CodePoolSaturated, CodeMalformedExpr:
		return false
	default:
		return true
	}
}

// message is the human-readable description shared by every instance of a
// code; per-instance context goes in DBError.Detail.
func (c Code) message() string {
	switch c {
	case CodeLockTimeout:
		return "lock acquisition timed out"
	case CodeMissingBlocks:
		return "no block addresses for table"
	case CodeExecutorFailure:
		return "executor reported failure"
	case CodePoolSaturated:
		return "transaction pool saturated"
	case CodeMalformedExpr:
		return "unknown operator code"
	default:
		return "database error"
	}
}

// Component names the subsystem an error originated in.
type Component string

const (
	ComponentLockTable Component = "LockTable"
	ComponentWorker    Component = "Worker"
	ComponentManager   Component = "TransactionManager"
	ComponentRewriter  Component = "Rewriter"
)

// DBError carries a Code plus enough context to tell which operation of
// which subsystem raised it, and for which resource.
type DBError struct {
	// Code is the error kind; Category and Abortive derive from it.
	Code Code

	// Detail narrows the code to the specific instance, e.g. the table
	// name whose block lookup came back empty.
	Detail string

	// Operation is what was being performed, e.g. "Acquire",
	// "ResolveBlocks", "Execute".
	Operation string

	// Component is the subsystem the error originated in.
	Component Component

	// Cause is the underlying error, preserved for errors.Is/As traversal.
	Cause error

	// Stack is the call stack at creation, captured by the constructors.
	Stack []uintptr
}

// newError builds a DBError for code with the caller's stack attached.
func newError(code Code, detail, operation string, component Component, cause error) *DBError {
	return &DBError{
		Code:      code,
		Detail:    detail,
		Operation: operation,
		Component: component,
		Cause:     cause,
		Stack:     captureStack(),
	}
}

// Wrap attaches code, operation, and component to an error from outside
// this package. An error that is already a DBError keeps its own code and
// stack; only unset context fields are filled in.
func Wrap(err error, code Code, operation string, component Component) *DBError {
	if err == nil {
		return nil
	}

	if dbErr, ok := err.(*DBError); ok {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return newError(code, "", operation, component, err)
}

// captureStack skips itself, newError, and the constructor so the stack
// starts at the error's origin.
func captureStack() []uintptr {
	pcs := make([]uintptr, 32)
	return pcs[:runtime.Callers(4, pcs)]
}

// Error formats as
//
//	CODE: message: detail [Component.Operation]: cause
//
// with the optional pieces omitted when unset.
func (e *DBError) Error() string {
	parts := []string{string(e.Code), e.Code.message()}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}

	msg := strings.Join(parts, ": ")
	if e.Component != "" || e.Operation != "" {
		msg += fmt.Sprintf(" [%s.%s]", e.Component, e.Operation)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As
// traversal through the chain.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is matches any *DBError carrying the same Code, so
// errors.Is(err, dberror.LockTimeout("", "")) holds for every lock timeout
// regardless of which acquire raised it.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	return ok && t.Code == e.Code
}

// LockTimeout reports that an acquire exceeded the configured wait and the
// owning transaction has aborted.
func LockTimeout(operation string, detail string) *DBError {
	return newError(CodeLockTimeout, detail, operation, ComponentLockTable, nil)
}

// MissingBlocks reports that the block-address collaborator returned no
// addresses for a command's table.
func MissingBlocks(table string) *DBError {
	return newError(CodeMissingBlocks, table, "ResolveBlocks", ComponentWorker, nil)
}

// ExecutorFailure wraps the error the external command executor returned.
func ExecutorFailure(cause error) *DBError {
	return newError(CodeExecutorFailure, "", "Execute", ComponentWorker, cause)
}

// PoolSaturated reports that a non-blocking submit found no free worker
// slot.
func PoolSaturated(active, max int) *DBError {
	detail := fmt.Sprintf("%d/%d active", active, max)
	return newError(CodePoolSaturated, detail, "Submit", ComponentManager, nil)
}

// MalformedExpression records an unknown operator code. The rewriter never
// aborts on it; the offending token is logged and passed through, and this
// error exists for callers that want the value rather than a log line.
func MalformedExpression(opCode string) *DBError {
	return newError(CodeMalformedExpr, opCode, "Rewrite", ComponentRewriter, nil)
}

// FormatStack renders the captured stack for debugging, one frame per line.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	lines := []string{"stack:"}
	frames := runtime.CallersFrames(e.Stack)
	for {
		f, more := frames.Next()
		lines = append(lines, fmt.Sprintf("  %s (%s:%d)", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}
