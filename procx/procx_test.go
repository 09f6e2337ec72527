package procx

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/resource"
)

func newTestProc(t *testing.T, policy permissions.Policy) (*Proc, *resource.Table) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests exercise unix tools")
	}
	table := resource.NewTable()
	t.Cleanup(func() { table.Close() })
	return New(permissions.NewManager(policy), table, metrics.NewRegistry()), table
}

func allowRun() permissions.Policy {
	var p permissions.Policy
	p.AddAllow(permissions.CapRun, permissions.Wildcard)
	return p
}

func TestOutput_Echo(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())

	out, err := proc.Output(context.Background(), Command{
		Path: "echo",
		Args: []string{"hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Status.Success || out.Status.Code != 0 {
		t.Fatalf("status = %+v", out.Status)
	}
	if got := strings.TrimSpace(string(out.Stdout)); got != "hello" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestOutput_ExitCode(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())

	out, err := proc.Output(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "echo oops >&2; exit 3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status.Success || out.Status.Code != 3 {
		t.Fatalf("status = %+v", out.Status)
	}
	if got := strings.TrimSpace(string(out.Stderr)); got != "oops" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestSpawn_PermissionDenied(t *testing.T) {
	proc, _ := newTestProc(t, permissions.Policy{})
	_, err := proc.Spawn(context.Background(), Command{Path: "echo"})
	if !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}
}

func TestSpawn_RunAllowlist(t *testing.T) {
	var p permissions.Policy
	p.AddAllow(permissions.CapRun, "echo")
	proc, _ := newTestProc(t, p)

	child, err := proc.Spawn(context.Background(), Command{Path: "echo", Stdout: StdioNull})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := child.Wait(); err != nil {
		t.Fatal(err)
	}

	if _, err := proc.Spawn(context.Background(), Command{Path: "ls"}); !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable for ls, got %v", err)
	}
}

func TestSpawn_NotFound(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())
	_, err := proc.Spawn(context.Background(), Command{Path: "definitely-not-a-real-binary-4821"})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSpawn_PipedStreamsTracked(t *testing.T) {
	proc, table := newTestProc(t, allowRun())

	child, err := proc.Spawn(context.Background(), Command{
		Path:   "cat",
		Stdin:  StdioPiped,
		Stdout: StdioPiped,
	})
	if err != nil {
		t.Fatal(err)
	}
	if child.Pid() <= 0 {
		t.Fatalf("pid = %d", child.Pid())
	}
	if _, ok := table.GetKind(child.Stdin.Rid(), resource.KindChildStdin); !ok {
		t.Fatal("stdin not tracked")
	}
	if _, ok := table.GetKind(child.Stdout.Rid(), resource.KindChildStdout); !ok {
		t.Fatal("stdout not tracked")
	}

	if _, err := child.Stdin.Write([]byte("roundtrip")); err != nil {
		t.Fatal(err)
	}
	if err := child.Stdin.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := child.Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Stdout) != "roundtrip" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if table.Len() != 0 {
		t.Fatalf("streams still tracked after wait: %d", table.Len())
	}
}

func TestChild_AbortStreamsReleasesRids(t *testing.T) {
	_, table := newTestProc(t, allowRun())

	// Set up the pipes by hand the way Spawn does before Start, then
	// abort as if a later pipe had failed.
	c := exec.Command("cat")
	child := &Child{cmd: c, table: table}

	wc, err := c.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	child.Stdin = newWriteStream(wc, resource.KindChildStdin, table)
	rc, err := c.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	child.Stdout = newReadStream(rc, resource.KindChildStdout, table)
	if table.Len() != 2 {
		t.Fatalf("tracked = %d, want 2", table.Len())
	}

	child.abortStreams()
	if table.Len() != 0 {
		t.Fatalf("streams still tracked after abort: %d", table.Len())
	}
	if _, err := wc.Write([]byte("x")); err == nil {
		t.Fatal("pipe still open after abort")
	}
}

func TestChild_KillSignalStatus(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())

	child, err := proc.Spawn(context.Background(), Command{
		Path: "sleep",
		Args: []string{"30"},
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := child.Kill("SIGTERM"); err != nil {
		t.Fatal(err)
	}

	status, err := child.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if status.Success {
		t.Fatal("killed child reported success")
	}
	if status.Signal != "SIGTERM" {
		t.Fatalf("signal = %q", status.Signal)
	}
}

func TestChild_KillUnknownSignal(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())
	child, err := proc.Spawn(context.Background(), Command{Path: "sleep", Args: []string{"30"}})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		child.Kill("SIGKILL")
		child.Wait()
	}()

	if err := child.Kill("SIGBOGUS"); errs.ClassOf(err) != errs.InvalidData {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestChild_DoubleWait(t *testing.T) {
	proc, _ := newTestProc(t, allowRun())
	child, err := proc.Spawn(context.Background(), Command{Path: "true"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := child.Wait(); err != nil {
		t.Fatal(err)
	}
	if _, err := child.Wait(); !errs.IsBadResource(err) {
		t.Fatalf("expected BadResource, got %v", err)
	}
}

func TestSpawn_EnvOverrideNeedsCapability(t *testing.T) {
	p := allowRun()
	proc, _ := newTestProc(t, p)

	_, err := proc.Spawn(context.Background(), Command{
		Path: "env",
		Env:  map[string]string{"SHIM_TEST_VAR": "1"},
	})
	if !errs.IsNotCapable(err) {
		t.Fatalf("expected NotCapable, got %v", err)
	}

	p.AddAllow(permissions.CapEnv, "SHIM_TEST_VAR")
	proc2, _ := newTestProc(t, p)
	out, err := proc2.Output(context.Background(), Command{
		Path: "env",
		Env:  map[string]string{"SHIM_TEST_VAR": "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out.Stdout), "SHIM_TEST_VAR=1") {
		t.Fatal("override missing from child environment")
	}
}
