package permissions

import (
	"sync"

	"go.uber.org/zap"

	"github.com/hostlayer/hostshim/errs"
)

// Manager resolves capability requests against a Policy and tracks
// runtime revocations. There is no interactive prompting: a request that
// the policy does not cover resolves to denied.
type Manager struct {
	policy  Policy
	mu      sync.RWMutex
	revoked map[string]bool
}

// NewManager creates a manager over a static policy.
func NewManager(policy Policy) *Manager {
	return &Manager{
		policy:  policy,
		revoked: make(map[string]bool),
	}
}

// Query returns the current state of a capability descriptor without
// resolving it. Capabilities the policy is silent on report Prompt.
func (m *Manager) Query(d Descriptor) State {
	d = d.normalized()

	m.mu.RLock()
	revoked := m.revoked[d.String()]
	m.mu.RUnlock()

	if revoked {
		return Prompt
	}
	if m.policy.denies(d) {
		return Denied
	}
	if m.policy.allows(d) {
		return Granted
	}
	return Prompt
}

// Request resolves a capability descriptor to a definite state. With no
// prompt surface, Prompt collapses to Denied; denials are logged.
func (m *Manager) Request(d Descriptor) State {
	state := m.Query(d)
	if state == Prompt {
		state = Denied
	}
	if state == Denied {
		Logger().Debug("permission denied",
			zap.String("capability", string(d.Name)),
			zap.String("value", d.Value()))
	}
	return state
}

// Revoke downgrades a descriptor so later queries report Prompt. It never
// upgrades a policy denial.
func (m *Manager) Revoke(d Descriptor) State {
	d = d.normalized()

	m.mu.Lock()
	m.revoked[d.String()] = true
	m.mu.Unlock()

	if m.policy.denies(d) {
		return Denied
	}
	return Prompt
}

// Check requests the descriptor and returns a NotCapable error when the
// request does not resolve to Granted. op names the calling operation.
func (m *Manager) Check(d Descriptor, op string) error {
	if m.Request(d) == Granted {
		return nil
	}
	return errs.NewPath(errs.NotCapable, op, d.Value()).
		WithDetail("requires " + string(d.Name) + " access")
}
