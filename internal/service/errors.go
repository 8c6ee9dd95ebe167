package service

import (
	"errors"
	"fmt"
)

// Kind classifies recoverable domain failures. None of them abort a run.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindDuplicate Kind = "duplicate"
	KindMalformed Kind = "malformed"
	KindExternal  Kind = "external"
)

var (
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrDuplicate = &Error{Kind: KindDuplicate}
	ErrMalformed = &Error{Kind: KindMalformed}
	ErrExternal  = &Error{Kind: KindExternal}
)

type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Subject != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Subject, e.Kind, e.Err)
	case e.Subject != "":
		return fmt.Sprintf("%s: %s", e.Subject, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found failure regardless of subject.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Subject: fmt.Sprintf(format, args...)}
}

func duplicate(format string, args ...any) error {
	return &Error{Kind: KindDuplicate, Subject: fmt.Sprintf(format, args...)}
}

func malformed(format string, args ...any) error {
	return &Error{Kind: KindMalformed, Subject: fmt.Sprintf(format, args...)}
}

func external(subject string, err error) error {
	return &Error{Kind: KindExternal, Subject: subject, Err: err}
}

// KindOf reports the taxonomy kind of err, or "" for storage and other
// unexpected failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
