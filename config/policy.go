package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hostlayer/hostshim/permissions"
)

// File is the YAML schema for a permission policy document.
type File struct {
	AllowAll bool `yaml:"allow_all"`

	AllowRead  []string `yaml:"allow_read"`
	DenyRead   []string `yaml:"deny_read"`
	AllowWrite []string `yaml:"allow_write"`
	DenyWrite  []string `yaml:"deny_write"`
	AllowNet   []string `yaml:"allow_net"`
	DenyNet    []string `yaml:"deny_net"`
	AllowEnv   []string `yaml:"allow_env"`
	DenyEnv    []string `yaml:"deny_env"`
	AllowRun   []string `yaml:"allow_run"`
	DenyRun    []string `yaml:"deny_run"`
	AllowSys   []string `yaml:"allow_sys"`
	DenySys    []string `yaml:"deny_sys"`
}

// Parse decodes a YAML policy document. Relative paths in read/write
// entries are kept as written; use Load to anchor them to the file's
// directory.
func Parse(data []byte) (permissions.Policy, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return permissions.Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	return f.Policy(), nil
}

// Load reads a policy file and anchors its relative path entries to the
// directory containing the file.
func Load(path string) (permissions.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return permissions.Policy{}, fmt.Errorf("read policy: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return permissions.Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	f.AllowRead = anchorPaths(base, f.AllowRead)
	f.DenyRead = anchorPaths(base, f.DenyRead)
	f.AllowWrite = anchorPaths(base, f.AllowWrite)
	f.DenyWrite = anchorPaths(base, f.DenyWrite)

	return f.Policy(), nil
}

// Policy converts the decoded file into a permissions.Policy.
func (f *File) Policy() permissions.Policy {
	p := permissions.Policy{AllowAll: f.AllowAll}

	add := func(name permissions.Capability, allow, deny []string) {
		for _, v := range allow {
			p.AddAllow(name, v)
		}
		for _, v := range deny {
			p.AddDeny(name, v)
		}
	}
	add(permissions.CapRead, f.AllowRead, f.DenyRead)
	add(permissions.CapWrite, f.AllowWrite, f.DenyWrite)
	add(permissions.CapNet, f.AllowNet, f.DenyNet)
	add(permissions.CapEnv, f.AllowEnv, f.DenyEnv)
	add(permissions.CapRun, f.AllowRun, f.DenyRun)
	add(permissions.CapSys, f.AllowSys, f.DenySys)
	return p
}

func anchorPaths(base string, entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if e == permissions.Wildcard || filepath.IsAbs(e) {
			out[i] = e
			continue
		}
		out[i] = filepath.Join(base, e)
	}
	return out
}
