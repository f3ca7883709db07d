package herrs

import (
	"fmt"
	"runtime"
)

// Error is the module's error interface: a Kind-classified error with an
// optional parent chain and a captured call-site frame. It is compatible
// with the standard library's errors.Is / errors.As via Unwrap.
type Error interface {
	error

	Kind() Kind
	Retryable() bool

	// HasKind reports whether this error or any parent carries the given Kind.
	HasKind(k Kind) bool

	// Parent returns the immediate causes of this error, oldest first.
	Parent() []error
	// Add appends one or more causes to this error's parent chain.
	Add(parent ...error)

	// Unwrap exposes the parent chain to errors.Is / errors.As.
	Unwrap() []error

	// Frame returns the file:line captured when the error was created.
	Frame() (file string, line int)
}

type kerr struct {
	kind   Kind
	msg    string
	parent []error
	file   string
	line   int
}

// New creates an Error of the given Kind with a formatted message and an
// optional set of parent causes.
func New(k Kind, msg string, parent ...error) Error {
	file, line := frame()
	return &kerr{kind: k, msg: msg, parent: compact(parent), file: file, line: line}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(k Kind, pattern string, args ...any) Error {
	file, line := frame()
	return &kerr{kind: k, msg: fmt.Sprintf(pattern, args...), file: file, line: line}
}

// Wrap classifies an arbitrary error under Kind, preserving it as a parent
// cause. If err is already an Error of the same Kind it is returned as-is.
func Wrap(k Kind, err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok && e.Kind() == k {
		return e
	}
	file, line := frame()
	return &kerr{kind: k, msg: err.Error(), parent: []error{err}, file: file, line: line}
}

func compact(in []error) []error {
	out := make([]error, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func frame() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", 0
	}
	return file, line
}

func (e *kerr) Error() string {
	if e.file != "" {
		return fmt.Sprintf("%s: %s (%s:%d)", e.kind, e.msg, e.file, e.line)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kerr) Kind() Kind      { return e.kind }
func (e *kerr) Retryable() bool { return e.kind.Retryable() }

func (e *kerr) HasKind(k Kind) bool {
	if e.kind == k {
		return true
	}
	for _, p := range e.parent {
		if pe, ok := p.(Error); ok && pe.HasKind(k) {
			return true
		}
	}
	return false
}

func (e *kerr) Parent() []error { return append([]error(nil), e.parent...) }

func (e *kerr) Add(parent ...error) { e.parent = append(e.parent, compact(parent)...) }

func (e *kerr) Unwrap() []error { return e.parent }

func (e *kerr) Frame() (string, int) { return e.file, e.line }

// Is reports whether err is (or wraps) a herrs.Error.
func Is(err error) bool {
	_, ok := err.(Error)
	if ok {
		return true
	}
	var e Error
	return asError(err, &e)
}

// Get extracts the herrs.Error from err, or returns nil.
func Get(err error) Error {
	if e, ok := err.(Error); ok {
		return e
	}
	var e Error
	if asError(err, &e) {
		return e
	}
	return nil
}

func asError(err error, target *Error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		*target = e
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return asError(u.Unwrap(), target)
	case interface{ Unwrap() []error }:
		for _, p := range u.Unwrap() {
			if asError(p, target) {
				return true
			}
		}
	}
	return false
}
