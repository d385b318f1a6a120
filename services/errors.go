package services

import (
	"errors"
	"fmt"
)

type AppError struct {
	HTTPCode int
	Message  string
	Data     interface{}
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAppError(httpCode int, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Err: err}
}

func newAppErrorWithData(httpCode int, message string, data interface{}, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Data: data, Err: err}
}

// QuotaError is raised before any durable mutation when a write would exceed
// a limit. It always carries the limit and the attempted delta.
type QuotaError struct {
	Scope     string // "tenant", "room" or "user"
	Limit     int64
	Requested int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s quota exceeded: limit %d bytes, requested %d bytes", e.Scope, e.Limit, e.Requested)
}

// ErrRecountPending marks a mutation that committed but whose ancestor
// recount failed afterward. The structural change is durable; only the
// denormalized counters need a re-run.
var ErrRecountPending = errors.New("recount pending")
