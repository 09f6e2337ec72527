package sysx

import (
	"runtime"
	"testing"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/permissions"
)

func TestEnv_Gated(t *testing.T) {
	var p permissions.Policy
	p.AddAllow(permissions.CapEnv, "SHIM_SYSX_OK")
	s := New(permissions.NewManager(p))

	t.Setenv("SHIM_SYSX_OK", "yes")
	t.Setenv("SHIM_SYSX_SECRET", "no")

	got, err := s.Env("SHIM_SYSX_OK")
	if err != nil {
		t.Fatal(err)
	}
	if got != "yes" {
		t.Fatalf("got %q", got)
	}

	if _, err := s.Env("SHIM_SYSX_SECRET"); !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}
}

func TestEnv_SetDeleteHas(t *testing.T) {
	var p permissions.Policy
	p.AddAllow(permissions.CapEnv, "SHIM_SYSX_RW")
	s := New(permissions.NewManager(p))

	if err := s.SetEnv("SHIM_SYSX_RW", "v"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.DeleteEnv("SHIM_SYSX_RW") })

	ok, err := s.HasEnv("SHIM_SYSX_RW")
	if err != nil || !ok {
		t.Fatalf("HasEnv = %v, %v", ok, err)
	}
	if err := s.DeleteEnv("SHIM_SYSX_RW"); err != nil {
		t.Fatal(err)
	}
	ok, _ = s.HasEnv("SHIM_SYSX_RW")
	if ok {
		t.Fatal("variable still set")
	}
}

func TestEnvSnapshot_NeedsBlanketGrant(t *testing.T) {
	var p permissions.Policy
	p.AddAllow(permissions.CapEnv, "HOME")
	s := New(permissions.NewManager(p))

	if _, err := s.EnvSnapshot(); !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}

	all := New(permissions.NewManager(permissions.AllowAllPolicy()))
	t.Setenv("SHIM_SNAP_PROBE", "1")
	snap, err := all.EnvSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap["SHIM_SNAP_PROBE"] != "1" {
		t.Fatal("snapshot missing probe variable")
	}
}

func TestHostname(t *testing.T) {
	s := New(permissions.NewManager(permissions.AllowAllPolicy()))
	name, err := s.Hostname()
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Fatal("empty hostname")
	}

	denied := New(permissions.NewManager(permissions.Policy{}))
	if _, err := denied.Hostname(); !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}
}

func TestUidGid(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no numeric uid/gid on windows")
	}
	s := New(permissions.NewManager(permissions.AllowAllPolicy()))
	if _, err := s.Uid(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Gid(); err != nil {
		t.Fatal(err)
	}
}

func TestLinuxInfo(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only queries")
	}
	s := New(permissions.NewManager(permissions.AllowAllPolicy()))

	rel, err := s.OsRelease()
	if err != nil {
		t.Fatal(err)
	}
	if rel == "" {
		t.Fatal("empty release")
	}

	mem, err := s.SystemMemoryInfo()
	if err != nil {
		t.Fatal(err)
	}
	if mem.Total == 0 {
		t.Fatal("zero total memory")
	}

	if _, err := s.LoadAvg(); err != nil {
		t.Fatal(err)
	}
}
