package fsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/resource"
)

func newTestFS(t *testing.T, policy permissions.Policy) (*FS, *resource.Table, *metrics.Registry) {
	t.Helper()
	table := resource.NewTable()
	reg := metrics.NewRegistry()
	table.Subscribe(reg)
	t.Cleanup(func() { table.Close() })
	return New(permissions.NewManager(policy), table, reg), table, reg
}

func allowDir(dir string) permissions.Policy {
	var p permissions.Policy
	p.AddAllow(permissions.CapRead, dir)
	p.AddAllow(permissions.CapWrite, dir)
	return p
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()
	path := filepath.Join(dir, "hello.txt")

	if err := fs.WriteTextFile(ctx, path, "hello world", WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	got, err := fs.ReadTextFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}

	if err := fs.WriteTextFile(ctx, path, "!", WriteOptions{Append: true}); err != nil {
		t.Fatal(err)
	}
	got, _ = fs.ReadTextFile(ctx, path)
	if got != "hello world!" {
		t.Fatalf("after append: %q", got)
	}

	err = fs.WriteTextFile(ctx, path, "x", WriteOptions{CreateNew: true})
	if !errs.IsAlreadyExists(err) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestWriteFile_NoCreate(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()
	path := filepath.Join(dir, "existing.txt")

	err := fs.WriteTextFile(ctx, path, "x", WriteOptions{NoCreate: true})
	if !errs.IsNotFound(err) {
		t.Fatalf("missing target: expected NotFound, got %v", err)
	}

	if err := fs.WriteTextFile(ctx, path, "first", WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteTextFile(ctx, path, "second", WriteOptions{NoCreate: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := fs.ReadTextFile(ctx, path)
	if got != "second" {
		t.Fatalf("got %q", got)
	}

	err = fs.WriteTextFile(ctx, path, "x", WriteOptions{NoCreate: true, CreateNew: true})
	if errs.ClassOf(err) != errs.InvalidData {
		t.Fatalf("conflicting options: expected InvalidData, got %v", err)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))

	_, err := fs.ReadFile(context.Background(), filepath.Join(dir, "missing"))
	if !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestPermissionGate(t *testing.T) {
	dir := t.TempDir()
	var p permissions.Policy
	p.AddAllow(permissions.CapRead, dir) // read only
	fs, _, _ := newTestFS(t, p)
	ctx := context.Background()

	err := fs.WriteTextFile(ctx, filepath.Join(dir, "f"), "x", WriteOptions{})
	if !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}

	_, err = fs.ReadFile(ctx, "/etc/hostname")
	if !errs.IsNotCapable(err) {
		t.Fatalf("outside allowed dir: expected NotCapable, got %v", err)
	}
}

func TestOpen_TracksResource(t *testing.T) {
	dir := t.TempDir()
	fs, table, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	f, err := fs.Create(ctx, filepath.Join(dir, "f.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Rid() == 0 {
		t.Fatal("expected a rid")
	}
	if _, ok := table.GetKind(f.Rid(), resource.KindFile); !ok {
		t.Fatal("file not in table")
	}

	if _, err := f.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Get(f.Rid()); ok {
		t.Fatal("rid still live after close")
	}
	if err := f.Close(); !errs.IsBadResource(err) {
		t.Fatalf("double close: expected BadResource, got %v", err)
	}
}

func TestOpen_Options(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()
	path := filepath.Join(dir, "opts.txt")

	// createNew on a fresh path succeeds
	f, err := fs.Open(ctx, path, OpenOptions{Write: true, CreateNew: true})
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	// createNew again fails
	if _, err := fs.Open(ctx, path, OpenOptions{Write: true, CreateNew: true}); !errs.IsAlreadyExists(err) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}

	// create without write is rejected before touching the host
	if _, err := fs.Open(ctx, path, OpenOptions{Create: true}); errs.ClassOf(err) != errs.InvalidData {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestStatAndReadDir(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	sub := filepath.Join(dir, "sub")
	if err := fs.Mkdir(ctx, sub, MkdirOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteTextFile(ctx, filepath.Join(dir, "a.txt"), "aaa", WriteOptions{}); err != nil {
		t.Fatal(err)
	}

	info, err := fs.Stat(ctx, filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsFile || info.Size != 3 || info.Name != "a.txt" {
		t.Fatalf("info = %+v", info)
	}

	dinfo, err := fs.Stat(ctx, sub)
	if err != nil {
		t.Fatal(err)
	}
	if !dinfo.IsDir {
		t.Fatal("expected directory")
	}

	entries, err := fs.ReadDir(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRemoveAndRename(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := fs.WriteTextFile(ctx, a, "x", WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename(ctx, a, b); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Stat(ctx, a); !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound after rename, got %v", err)
	}

	nested := filepath.Join(dir, "d", "e")
	if err := fs.Mkdir(ctx, nested, MkdirOptions{Recursive: true}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove(ctx, filepath.Join(dir, "d"), RemoveOptions{}); err == nil {
		t.Fatal("non-recursive remove of non-empty dir should fail")
	}
	if err := fs.Remove(ctx, filepath.Join(dir, "d"), RemoveOptions{Recursive: true}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove(ctx, filepath.Join(dir, "d"), RemoveOptions{Recursive: true}); !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSymlinkReadLinkRealPath(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link")
	if err := fs.WriteTextFile(ctx, target, "t", WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Symlink(ctx, target, link); err != nil {
		t.Fatal(err)
	}

	got, err := fs.ReadLink(ctx, link)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Fatalf("readlink = %q, want %q", got, target)
	}

	real, err := fs.RealPath(ctx, link)
	if err != nil {
		t.Fatal(err)
	}
	// t.TempDir may itself sit behind a symlink, so resolve the expectation.
	want, _ := filepath.EvalSymlinks(target)
	if real != want {
		t.Fatalf("realpath = %q, want %q", real, want)
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := fs.WriteTextFile(ctx, src, "payload", WriteOptions{Mode: 0o600}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Copy(ctx, src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := fs.ReadTextFile(ctx, dst)
	if err != nil {
		t.Fatal(err)
	}
	if got != "payload" {
		t.Fatalf("got %q", got)
	}
	fi, _ := os.Stat(dst)
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", fi.Mode().Perm())
	}
}

func TestMakeTemp(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	tmpDir, err := fs.MakeTempDir(ctx, TempOptions{Dir: dir, Prefix: "pre_", Suffix: "_suf"})
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(tmpDir)
	if filepath.Dir(tmpDir) != dir || base[:4] != "pre_" || base[len(base)-4:] != "_suf" {
		t.Fatalf("tmpDir = %q", tmpDir)
	}

	tmpFile, err := fs.MakeTempFile(ctx, TempOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tmpFile); err != nil {
		t.Fatal(err)
	}
}

func TestCanceledContext(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.ReadFile(ctx, filepath.Join(dir, "x"))
	if !errs.IsInterrupted(err) {
		t.Fatalf("expected Interrupted, got %v", err)
	}
}

func TestMetricsRecorded(t *testing.T) {
	dir := t.TempDir()
	fs, _, reg := newTestFS(t, allowDir(dir))
	ctx := context.Background()

	fs.WriteTextFile(ctx, filepath.Join(dir, "m"), "x", WriteOptions{})
	fs.ReadFile(ctx, filepath.Join(dir, "missing"))

	snap := reg.Snapshot()
	if snap["write_file"].Completed != 1 {
		t.Fatalf("write_file = %+v", snap["write_file"])
	}
	rf := snap["read_file"]
	if rf.Completed != 1 || rf.Errored != 1 {
		t.Fatalf("read_file = %+v", rf)
	}
}
