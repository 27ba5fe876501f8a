package usecase

import (
	"errors"
	"fmt"
)

// ActionResult is the outcome of a public action. Expected failures
// (unauthorized, not found, business rule) are Success=false results, never errors.
type ActionResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	ID          string `json:"id,omitempty"`
}

// actionError carries a user-facing message for an expected failure class.
type actionError struct {
	kind error
	msg  string
}

func (e *actionError) Error() string { return e.msg }
func (e *actionError) Unwrap() error { return e.kind }

func refuse(kind error, format string, args ...any) error {
	return &actionError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// asResult folds expected failures into a result. Unexpected errors are returned for the caller's error boundary.
func asResult(res ActionResult, err error) (ActionResult, error) {
	if err == nil {
		res.Success = true
		return res, nil
	}
	var ae *actionError
	if errors.As(err, &ae) {
		return ActionResult{Success: false, Message: ae.msg}, nil
	}
	switch {
	case errors.Is(err, ErrBusinessRule),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidInput):
		return ActionResult{Success: false, Message: err.Error()}, nil
	}
	return ActionResult{}, err
}
