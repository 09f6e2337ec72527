package guest

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/sysx"
)

// Preopen maps a guest path to a host directory.
type Preopen struct {
	GuestPath string
	HostDir   string
}

// Options configures a single guest execution.
type Options struct {
	// Args is argv[1:] for the guest. argv[0] is always Name.
	Args []string

	// Name is argv[0] as seen by the guest. Defaults to "main".
	Name string

	// Env is the candidate environment. Only variables the policy grants
	// env access to are passed through.
	Env map[string]string

	// Preopens are directory mounts. Each requires read permission on the
	// host directory; mounts without write permission are read-only.
	Preopens []Preopen

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interpreter selects the interpreter engine over the compiler.
	Interpreter bool
}

// Runner executes WASI command modules under the permission policy.
// Guest access to the host goes through the WASI preopens and the
// "hostshim" host module; both are gated by the same manager the
// in-process surfaces use.
type Runner struct {
	perms *permissions.Manager
	sys   *sysx.Sys
	opts  Options
}

// NewRunner builds a runner for the given permission manager.
func NewRunner(perms *permissions.Manager, opts Options) *Runner {
	return &Runner{
		perms: perms,
		sys:   sysx.New(perms),
		opts:  opts,
	}
}

// Run compiles and runs a WASI command module, invoking its _start
// export. It returns the guest's exit code. A non-zero exit is not an
// error; err is set only when the module cannot be loaded, a preopen is
// denied, or the context interrupts execution.
func (r *Runner) Run(ctx context.Context, wasm []byte) (int, error) {
	conf, err := r.moduleConfig()
	if err != nil {
		return 0, err
	}

	var rtc wazero.RuntimeConfig
	if r.opts.Interpreter {
		rtc = wazero.NewRuntimeConfigInterpreter()
	} else {
		rtc = wazero.NewRuntimeConfig()
	}
	// Lets context cancellation terminate a guest stuck in a loop.
	rtc = rtc.WithCloseOnContextDone(true)

	rt := wazero.NewRuntimeWithConfig(ctx, rtc)
	defer rt.Close(context.Background())

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	if err := instantiateHostModule(ctx, rt, r.perms, r.sys); err != nil {
		return 0, err
	}

	code, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidData, "guest.compile", "", err)
	}

	Logger().Debug("running guest module",
		zap.Int("wasm_bytes", len(wasm)),
		zap.Strings("args", r.opts.Args))

	mod, err := rt.InstantiateModule(ctx, code, conf)
	if mod != nil {
		defer mod.Close(context.Background())
	}
	if err != nil {
		var exit *sys.ExitError
		if errors.As(err, &exit) {
			return int(exit.ExitCode()), nil
		}
		if cerr := errs.Interruptible(ctx, "guest.run"); cerr != nil {
			return 0, cerr
		}
		return 0, errs.Wrap(errs.Other, "guest.run", "", err)
	}
	return 0, nil
}

// moduleConfig translates Options into a wazero module config, applying
// the env and preopen permission gates.
func (r *Runner) moduleConfig() (wazero.ModuleConfig, error) {
	name := r.opts.Name
	if name == "" {
		name = "main"
	}

	conf := wazero.NewModuleConfig().
		WithArgs(append([]string{name}, r.opts.Args...)...).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep()

	if r.opts.Stdin != nil {
		conf = conf.WithStdin(r.opts.Stdin)
	}
	if r.opts.Stdout != nil {
		conf = conf.WithStdout(r.opts.Stdout)
	}
	if r.opts.Stderr != nil {
		conf = conf.WithStderr(r.opts.Stderr)
	}

	// Sorted so the guest sees a stable environ order.
	keys := make([]string, 0, len(r.opts.Env))
	for k := range r.opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if r.perms.Query(permissions.EnvVar(k)) != permissions.Granted {
			Logger().Debug("env variable withheld from guest", zap.String("name", k))
			continue
		}
		conf = conf.WithEnv(k, r.opts.Env[k])
	}

	fc := wazero.NewFSConfig()
	for _, p := range r.opts.Preopens {
		if err := r.perms.Check(permissions.ReadPath(p.HostDir), "guest.preopen"); err != nil {
			return nil, err
		}
		if r.perms.Query(permissions.WritePath(p.HostDir)) == permissions.Granted {
			fc = fc.WithDirMount(p.HostDir, p.GuestPath)
		} else {
			fc = fc.WithReadOnlyDirMount(p.HostDir, p.GuestPath)
		}
	}
	return conf.WithFSConfig(fc), nil
}
