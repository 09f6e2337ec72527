//go:build !unix

package procx

import (
	"os"

	"github.com/hostlayer/hostshim/errs"
)

func lookupSignal(name string) (os.Signal, error) {
	if name == "SIGKILL" {
		return os.Kill, nil
	}
	return nil, errs.New(errs.NotSupported, "kill").
		WithDetail("named signals are not supported on this platform")
}

func statusFrom(state *os.ProcessState) Status {
	return Status{
		Success: state.Success(),
		Code:    state.ExitCode(),
	}
}
