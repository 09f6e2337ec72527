package permissions

import (
	"net"
	"strings"
)

// Wildcard grants or denies every value of a capability.
const Wildcard = "*"

// Policy is the static grant/deny configuration a Manager resolves against.
// Entries are value strings in the same form Descriptor.Value returns; the
// Wildcard entry covers the whole capability. Deny entries beat allow
// entries at any specificity.
type Policy struct {
	AllowAll bool
	Allow    map[Capability][]string
	Deny     map[Capability][]string
}

// AllowAllPolicy grants every capability. Useful for trusted embedders and
// tests; everything else should start from an explicit policy file.
func AllowAllPolicy() Policy {
	return Policy{AllowAll: true}
}

// AddAllow appends an allow entry for a capability.
func (p *Policy) AddAllow(name Capability, value string) {
	if p.Allow == nil {
		p.Allow = make(map[Capability][]string)
	}
	p.Allow[name] = append(p.Allow[name], value)
}

// AddDeny appends a deny entry for a capability.
func (p *Policy) AddDeny(name Capability, value string) {
	if p.Deny == nil {
		p.Deny = make(map[Capability][]string)
	}
	p.Deny[name] = append(p.Deny[name], value)
}

func (p *Policy) denies(d Descriptor) bool {
	return matchAny(d, p.Deny[d.Name])
}

func (p *Policy) allows(d Descriptor) bool {
	if p.AllowAll {
		return true
	}
	return matchAny(d, p.Allow[d.Name])
}

func matchAny(d Descriptor, entries []string) bool {
	for _, entry := range entries {
		if matchEntry(d, entry) {
			return true
		}
	}
	return false
}

// matchEntry reports whether a single policy entry covers the descriptor.
// Paths match by directory prefix, net entries by host with an optional
// port, everything else by exact value.
func matchEntry(d Descriptor, entry string) bool {
	if entry == Wildcard {
		return true
	}
	switch d.Name {
	case CapRead, CapWrite:
		return pathCovers(Describe(d.Name, entry).normalized().Path, d.Path)
	case CapNet:
		return hostCovers(strings.ToLower(entry), d.Host)
	default:
		return entry == d.Value()
	}
}

// pathCovers reports whether granted covers requested, where granting a
// directory grants everything beneath it. Both paths are cleaned and
// absolute by the time they get here.
func pathCovers(granted, requested string) bool {
	if granted == "" || requested == "" {
		return false
	}
	if granted == requested {
		return true
	}
	if granted == "/" {
		return true
	}
	return strings.HasPrefix(requested, granted+"/")
}

// hostCovers reports whether a granted "host" or "host:port" entry covers
// the requested address. A bare host grants every port on that host; a
// host:port entry grants only that port.
func hostCovers(granted, requested string) bool {
	if granted == requested {
		return true
	}
	_, gPort, gErr := net.SplitHostPort(granted)
	rHost, _, rErr := net.SplitHostPort(requested)
	if gErr == nil && gPort != "" {
		// port-specific entry needs the exact match handled above
		return false
	}
	if rErr == nil {
		return granted == rHost
	}
	return false
}
