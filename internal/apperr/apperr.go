// Package apperr defines the service-level error taxonomy. Handlers map
// each kind to an HTTP status; services never import net/http.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindConflict
	KindAuthorization
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsConflict(err error) bool      { return KindOf(err) == KindConflict }
func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }
