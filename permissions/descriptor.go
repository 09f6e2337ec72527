package permissions

import (
	"path/filepath"
	"strings"
)

// Capability names a class of host access a caller can hold.
type Capability string

const (
	CapRead  Capability = "read"
	CapWrite Capability = "write"
	CapNet   Capability = "net"
	CapEnv   Capability = "env"
	CapRun   Capability = "run"
	CapSys   Capability = "sys"
)

// State is the grant state of a capability request.
type State string

const (
	Granted State = "granted"
	Denied  State = "denied"
	Prompt  State = "prompt"
)

// Descriptor is a structured request for one capability. Exactly one of the
// value fields is meaningful, selected by Name.
type Descriptor struct {
	Name Capability

	Path     string // read, write: file system path
	Host     string // net: "host" or "host:port"
	Variable string // env: environment variable name
	Command  string // run: program path or name
	Kind     string // sys: query kind, e.g. "hostname"
}

// ReadPath describes read access to a path.
func ReadPath(path string) Descriptor {
	return Descriptor{Name: CapRead, Path: path}
}

// WritePath describes write access to a path.
func WritePath(path string) Descriptor {
	return Descriptor{Name: CapWrite, Path: path}
}

// NetHost describes network access to a "host" or "host:port" address.
func NetHost(host string) Descriptor {
	return Descriptor{Name: CapNet, Host: host}
}

// EnvVar describes access to one environment variable.
func EnvVar(name string) Descriptor {
	return Descriptor{Name: CapEnv, Variable: name}
}

// RunCommand describes permission to spawn a program.
func RunCommand(command string) Descriptor {
	return Descriptor{Name: CapRun, Command: command}
}

// SysKind describes a system information query.
func SysKind(kind string) Descriptor {
	return Descriptor{Name: CapSys, Kind: kind}
}

// Describe builds a descriptor from a capability name and its value string.
// It is the inverse of Descriptor.Value and is used by policy loading and
// the guest host module.
func Describe(name Capability, value string) Descriptor {
	d := Descriptor{Name: name}
	switch name {
	case CapRead, CapWrite:
		d.Path = value
	case CapNet:
		d.Host = value
	case CapEnv:
		d.Variable = value
	case CapRun:
		d.Command = value
	case CapSys:
		d.Kind = value
	}
	return d
}

// Value returns the single meaningful value field for the descriptor.
func (d Descriptor) Value() string {
	switch d.Name {
	case CapRead, CapWrite:
		return d.Path
	case CapNet:
		return d.Host
	case CapEnv:
		return d.Variable
	case CapRun:
		return d.Command
	case CapSys:
		return d.Kind
	}
	return ""
}

// String renders the descriptor as "name" or "name:value" for logs.
func (d Descriptor) String() string {
	v := d.Value()
	if v == "" {
		return string(d.Name)
	}
	return string(d.Name) + ":" + v
}

// normalized returns the descriptor with its value in canonical form, so
// policy entries and requests compare equal regardless of spelling. Paths
// are cleaned and made absolute against the process working directory.
func (d Descriptor) normalized() Descriptor {
	switch d.Name {
	case CapRead, CapWrite:
		if d.Path != "" {
			if abs, err := filepath.Abs(d.Path); err == nil {
				d.Path = abs
			}
		}
	case CapNet:
		d.Host = strings.ToLower(d.Host)
	}
	return d
}
