package sysx

import (
	"os"
	"strings"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/permissions"
)

// Sys exposes environment variables and system information queries, each
// gated by the env or sys capability.
type Sys struct {
	perms *permissions.Manager
}

// New creates a system surface.
func New(perms *permissions.Manager) *Sys {
	return &Sys{perms: perms}
}

// Env returns the value of one environment variable.
func (s *Sys) Env(name string) (string, error) {
	if err := s.perms.Check(permissions.EnvVar(name), "env_get"); err != nil {
		return "", err
	}
	return os.Getenv(name), nil
}

// HasEnv reports whether the variable is set.
func (s *Sys) HasEnv(name string) (bool, error) {
	if err := s.perms.Check(permissions.EnvVar(name), "env_has"); err != nil {
		return false, err
	}
	_, ok := os.LookupEnv(name)
	return ok, nil
}

// SetEnv sets an environment variable in this process.
func (s *Sys) SetEnv(name, value string) error {
	if err := s.perms.Check(permissions.EnvVar(name), "env_set"); err != nil {
		return err
	}
	return errs.FromFS("env_set", name, os.Setenv(name, value))
}

// DeleteEnv removes an environment variable from this process.
func (s *Sys) DeleteEnv(name string) error {
	if err := s.perms.Check(permissions.EnvVar(name), "env_delete"); err != nil {
		return err
	}
	return errs.FromFS("env_delete", name, os.Unsetenv(name))
}

// EnvSnapshot returns the full environment. Requires a blanket env grant.
func (s *Sys) EnvSnapshot() (map[string]string, error) {
	if err := s.perms.Check(permissions.EnvVar(permissions.Wildcard), "env_snapshot"); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out, nil
}

// Sys query kinds.
const (
	KindHostname   = "hostname"
	KindOsRelease  = "osRelease"
	KindMemoryInfo = "systemMemoryInfo"
	KindLoadAvg    = "loadavg"
	KindUid        = "uid"
	KindGid        = "gid"
)

// Hostname returns the host name reported by the kernel.
func (s *Sys) Hostname() (string, error) {
	if err := s.perms.Check(permissions.SysKind(KindHostname), "hostname"); err != nil {
		return "", err
	}
	name, err := os.Hostname()
	if err != nil {
		return "", errs.FromFS("hostname", "", err)
	}
	return name, nil
}

// OsRelease returns the kernel release string.
func (s *Sys) OsRelease() (string, error) {
	if err := s.perms.Check(permissions.SysKind(KindOsRelease), "os_release"); err != nil {
		return "", err
	}
	return osRelease()
}

// MemoryInfo is the system memory census in bytes.
type MemoryInfo struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64
	SwapTotal uint64
	SwapFree  uint64
}

// SystemMemoryInfo returns the host memory census.
func (s *Sys) SystemMemoryInfo() (MemoryInfo, error) {
	if err := s.perms.Check(permissions.SysKind(KindMemoryInfo), "system_memory_info"); err != nil {
		return MemoryInfo{}, err
	}
	return memoryInfo()
}

// LoadAvg returns the 1, 5 and 15 minute load averages.
func (s *Sys) LoadAvg() ([3]float64, error) {
	if err := s.perms.Check(permissions.SysKind(KindLoadAvg), "loadavg"); err != nil {
		return [3]float64{}, err
	}
	return loadAvg()
}

// Uid returns the numeric user ID of the process.
func (s *Sys) Uid() (int, error) {
	if err := s.perms.Check(permissions.SysKind(KindUid), "uid"); err != nil {
		return 0, err
	}
	return os.Getuid(), nil
}

// Gid returns the numeric group ID of the process.
func (s *Sys) Gid() (int, error) {
	if err := s.perms.Check(permissions.SysKind(KindGid), "gid"); err != nil {
		return 0, err
	}
	return os.Getgid(), nil
}

// ExecPath returns the path of the running executable. Requires read
// capability on that path.
func (s *Sys) ExecPath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", errs.FromFS("exec_path", "", err)
	}
	if err := s.perms.Check(permissions.ReadPath(path), "exec_path"); err != nil {
		return "", err
	}
	return path, nil
}
