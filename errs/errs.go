package errs

import (
	"errors"
	"strings"
)

// Class names a category of host error. The set mirrors the error classes
// documented by the reference runtime so callers can match on semantics
// rather than on platform errno values.
type Class string

const (
	NotFound           Class = "NotFound"
	PermissionDenied   Class = "PermissionDenied"
	AlreadyExists      Class = "AlreadyExists"
	NotADirectory      Class = "NotADirectory"
	IsADirectory       Class = "IsADirectory"
	FilesystemLoop     Class = "FilesystemLoop"
	InvalidData        Class = "InvalidData"
	TimedOut           Class = "TimedOut"
	Interrupted        Class = "Interrupted"
	WouldBlock         Class = "WouldBlock"
	WriteZero          Class = "WriteZero"
	UnexpectedEof      Class = "UnexpectedEof"
	BadResource        Class = "BadResource"
	Busy               Class = "Busy"
	NotSupported       Class = "NotSupported"
	ConnectionRefused  Class = "ConnectionRefused"
	ConnectionReset    Class = "ConnectionReset"
	ConnectionAborted  Class = "ConnectionAborted"
	NotConnected       Class = "NotConnected"
	AddrInUse          Class = "AddrInUse"
	AddrNotAvailable   Class = "AddrNotAvailable"
	BrokenPipe         Class = "BrokenPipe"
	NetworkUnreachable Class = "NetworkUnreachable"
	NotCapable         Class = "NotCapable"
	Other              Class = "Other"
)

// Error is the structured error type returned by every shim operation.
type Error struct {
	Class  Class
	Op     string // operation that failed, e.g. "read_file"
	Path   string // path, address or other operand, if any
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Class))
	b.WriteString("] ")
	b.WriteString(e.Op)

	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by class.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Class == t.Class
	}
	return false
}

// New creates an error with a class and operation name.
func New(class Class, op string) *Error {
	return &Error{Class: class, Op: op}
}

// NewPath creates an error carrying the operand path or address.
func NewPath(class Class, op, path string) *Error {
	return &Error{Class: class, Op: op, Path: path}
}

// Wrap creates an error wrapping an underlying cause.
func Wrap(class Class, op, path string, cause error) *Error {
	return &Error{Class: class, Op: op, Path: path, Cause: cause}
}

// WithDetail returns a copy of e carrying a human-readable detail message.
func (e *Error) WithDetail(detail string) *Error {
	dup := *e
	dup.Detail = detail
	return &dup
}

// ClassOf returns the class of err, or Other for foreign errors.
// A nil error has no class and returns the empty string.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return Other
}

// Predicates for the classes callers most often branch on.

func IsNotFound(err error) bool         { return ClassOf(err) == NotFound }
func IsPermissionDenied(err error) bool { return ClassOf(err) == PermissionDenied }
func IsNotCapable(err error) bool       { return ClassOf(err) == NotCapable }
func IsAlreadyExists(err error) bool    { return ClassOf(err) == AlreadyExists }
func IsBadResource(err error) bool      { return ClassOf(err) == BadResource }
func IsInterrupted(err error) bool      { return ClassOf(err) == Interrupted }
func IsTimedOut(err error) bool         { return ClassOf(err) == TimedOut }
func IsNotSupported(err error) bool     { return ClassOf(err) == NotSupported }
