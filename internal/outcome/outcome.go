// Package outcome separates expected business-rule rejections from caller
// errors. Operations that fail loudly return an *Error; operations that only
// report a textual verdict return a Result.
package outcome

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindOK Kind = iota
	KindRejected
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindRejected:
		return "rejected"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrDuplicate    = errors.New("duplicate")
	ErrState        = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrInactive     = errors.New("inactive")
)

// Error carries a kind and one of the sentinel codes above.
type Error struct {
	Kind   Kind
	Code   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Code.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Code
}

// Reject builds an expected business-rule rejection.
func Reject(code error, format string, args ...any) error {
	return &Error{Kind: KindRejected, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Invalid builds a caller error: bad input or a broken reference.
func Invalid(code error, format string, args ...any) error {
	return &Error{Kind: KindInvalid, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err. Errors that did not come from this package
// are treated as invalid.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindInvalid
}

func IsRejected(err error) bool {
	return KindOf(err) == KindRejected
}

func IsInvalid(err error) bool {
	return err != nil && KindOf(err) == KindInvalid
}

// Result is the soft verdict of an operation that never fails outright.
type Result struct {
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
}

func OK(format string, args ...any) Result {
	return Result{Kind: KindOK, Message: fmt.Sprintf(format, args...)}
}

func Rejected(format string, args ...any) Result {
	return Result{Kind: KindRejected, Message: fmt.Sprintf(format, args...)}
}

func InvalidResult(format string, args ...any) Result {
	return Result{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func (r Result) Ok() bool {
	return r.Kind == KindOK
}

// Err converts a failed result into an *Error with the given code.
func (r Result) Err(code error) error {
	if r.Ok() {
		return nil
	}
	return &Error{Kind: r.Kind, Code: code, Reason: r.Message}
}
