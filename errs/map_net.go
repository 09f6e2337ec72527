package errs

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// FromNet relabels an error from the net package into the shim's taxonomy.
// The addr operand is recorded in the Path field.
func FromNet(op, addr string, err error) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return err
	}

	if class, ok := contextClass(err); ok {
		return Wrap(class, op, addr, err)
	}

	if errors.Is(err, net.ErrClosed) {
		return Wrap(BadResource, op, addr, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return Wrap(NotFound, op, addr, err)
		}
		if dnsErr.IsTimeout {
			return Wrap(TimedOut, op, addr, err)
		}
		return Wrap(Other, op, addr, err)
	}

	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return Wrap(InvalidData, op, addr, err)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return Wrap(classOfErrno(errno), op, addr, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Timeout() {
		return Wrap(TimedOut, op, addr, err)
	}
	if os.IsTimeout(err) {
		return Wrap(TimedOut, op, addr, err)
	}

	return Wrap(Other, op, addr, err)
}
