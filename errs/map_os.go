package errs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"syscall"
)

// FromFS relabels a file system error from the os package into the shim's
// taxonomy. The original error is kept as the cause. Returns nil for nil.
func FromFS(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return err
	}

	if class, ok := contextClass(err); ok {
		return Wrap(class, op, path, err)
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(NotFound, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return Wrap(PermissionDenied, op, path, err)
	case errors.Is(err, fs.ErrExist):
		return Wrap(AlreadyExists, op, path, err)
	case errors.Is(err, fs.ErrClosed):
		return Wrap(BadResource, op, path, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Wrap(UnexpectedEof, op, path, err)
	case errors.Is(err, io.ErrShortWrite):
		return Wrap(WriteZero, op, path, err)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return Wrap(classOfErrno(errno), op, path, err)
	}

	return Wrap(Other, op, path, err)
}

// contextClass classifies context cancellation and deadline errors.
func contextClass(err error) (Class, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return Interrupted, true
	case errors.Is(err, context.DeadlineExceeded):
		return TimedOut, true
	}
	return "", false
}

// classOfErrno maps raw errno values to error classes. Values that share a
// number on some platforms (EAGAIN/EWOULDBLOCK, ENOTSUP/EOPNOTSUPP) appear
// once to keep the switch valid everywhere.
func classOfErrno(errno syscall.Errno) Class {
	switch errno {
	case syscall.ENOENT:
		return NotFound
	case syscall.EACCES, syscall.EPERM:
		return PermissionDenied
	case syscall.EEXIST:
		return AlreadyExists
	case syscall.ENOTDIR:
		return NotADirectory
	case syscall.EISDIR:
		return IsADirectory
	case syscall.ELOOP:
		return FilesystemLoop
	case syscall.EBUSY:
		return Busy
	case syscall.EINVAL:
		return InvalidData
	case syscall.ETIMEDOUT:
		return TimedOut
	case syscall.EINTR:
		return Interrupted
	case syscall.EAGAIN:
		return WouldBlock
	case syscall.EPIPE:
		return BrokenPipe
	case syscall.ECONNREFUSED:
		return ConnectionRefused
	case syscall.ECONNRESET:
		return ConnectionReset
	case syscall.ECONNABORTED:
		return ConnectionAborted
	case syscall.ENOTCONN:
		return NotConnected
	case syscall.EADDRINUSE:
		return AddrInUse
	case syscall.EADDRNOTAVAIL:
		return AddrNotAvailable
	case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
		return NetworkUnreachable
	case syscall.EOPNOTSUPP:
		return NotSupported
	case syscall.EBADF:
		return BadResource
	default:
		return Other
	}
}

// Interruptible returns a ctx error mapped into the taxonomy, or nil when
// the context is still live. Shim operations call this before delegating.
func Interruptible(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		class, _ := contextClass(err)
		return Wrap(class, op, "", err)
	}
	return nil
}
