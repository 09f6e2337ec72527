//go:build unix

package procx

import (
	"os"
	"syscall"

	"github.com/hostlayer/hostshim/errs"
)

var signalsByName = map[string]syscall.Signal{
	"SIGHUP":   syscall.SIGHUP,
	"SIGINT":   syscall.SIGINT,
	"SIGQUIT":  syscall.SIGQUIT,
	"SIGABRT":  syscall.SIGABRT,
	"SIGKILL":  syscall.SIGKILL,
	"SIGUSR1":  syscall.SIGUSR1,
	"SIGUSR2":  syscall.SIGUSR2,
	"SIGPIPE":  syscall.SIGPIPE,
	"SIGALRM":  syscall.SIGALRM,
	"SIGTERM":  syscall.SIGTERM,
	"SIGCHLD":  syscall.SIGCHLD,
	"SIGCONT":  syscall.SIGCONT,
	"SIGSTOP":  syscall.SIGSTOP,
	"SIGTSTP":  syscall.SIGTSTP,
	"SIGWINCH": syscall.SIGWINCH,
}

func lookupSignal(name string) (os.Signal, error) {
	sig, ok := signalsByName[name]
	if !ok {
		return nil, errs.New(errs.InvalidData, "kill").
			WithDetail("unknown signal " + name)
	}
	return sig, nil
}

func statusFrom(state *os.ProcessState) Status {
	st := Status{
		Success: state.Success(),
		Code:    state.ExitCode(),
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		st.Signal = signalName(ws.Signal())
		st.Code = 128 + int(ws.Signal())
	}
	return st
}

func signalName(sig syscall.Signal) string {
	for name, s := range signalsByName {
		if s == sig {
			return name
		}
	}
	return sig.String()
}
