package steepshot

import (
	"errors"
	"strings"
)

// Result is the outcome of one API operation.
//
// Success is true iff Errors is empty and Result is set. On failure Result is
// nil and Errors holds at least one message, in the order the server or the
// transport reported them.
type Result[T any] struct {
	Success bool     `json:"success"`
	Result  *T       `json:"result,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func succeeded[T any](v *T) *Result[T] {
	return &Result[T]{Success: true, Result: v}
}

func failed[T any](messages ...string) *Result[T] {
	if len(messages) == 0 {
		messages = []string{"unknown error"}
	}
	return &Result[T]{Errors: messages}
}

// Err joins the messages into a single error, or returns nil on success.
func (r *Result[T]) Err() error {
	if r == nil {
		return errors.New("nil result")
	}
	if r.Success {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}
