package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hostlayer/hostshim"
	"github.com/hostlayer/hostshim/config"
	"github.com/hostlayer/hostshim/guest"
	"github.com/hostlayer/hostshim/permissions"
)

func main() {
	var (
		wasmFile = flag.String("wasm", "", "Path to WASI command module")
		policy   = flag.String("policy", "", "Path to YAML permission policy")
		allowAll = flag.Bool("allow-all", false, "Grant every capability")
		argvStr  = flag.String("argv", "", "Guest arguments (comma-separated)")
		envStr   = flag.String("env", "", "Guest environment (KEY=VAL,KEY2=VAL2)")
		preopens = flag.String("preopens", "", "Directory mounts (/host:/guest,/host2:/guest2)")
		stdinStr = flag.String("stdin", "", "Stdin data")
		interp   = flag.Bool("interp", false, "Use the interpreter engine")
		verbose  = flag.Bool("v", false, "Verbose logging")
		inspect  = flag.Bool("i", false, "Inspect permissions and metrics after the run")
	)
	flag.Parse()

	if *wasmFile == "" && !*inspect {
		fmt.Fprintln(os.Stderr, "Usage: hostshim -wasm <file.wasm> [-policy file.yaml | -allow-all] [-argv a,b] [-env K=V,...]")
		fmt.Fprintln(os.Stderr, "       hostshim -i [-policy file.yaml]  (inspect a policy)")
		os.Exit(1)
	}

	pol, err := loadPolicy(*policy, *allowAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	env := hostshim.New(pol)
	defer env.Close()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		hostshim.SetLogger(logger)
	}

	code := 0
	if *wasmFile != "" {
		code, err = run(env, *wasmFile, *argvStr, *envStr, *preopens, *stdinStr, *interp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *inspect {
		if err := runInspector(env); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(code)
}

func loadPolicy(path string, allowAll bool) (permissions.Policy, error) {
	if path != "" {
		return config.Load(path)
	}
	if allowAll {
		return permissions.AllowAllPolicy(), nil
	}
	// Default is deny everything.
	return permissions.Policy{}, nil
}

func run(env *hostshim.Env, wasmFile, argvStr, envStr, preopensStr, stdinStr string, interp bool) (int, error) {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	opts := guest.Options{
		Name:        wasmFile,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interpreter: interp,
	}

	if argvStr != "" {
		opts.Args = strings.Split(argvStr, ",")
	}

	if envStr != "" {
		opts.Env = make(map[string]string)
		for _, kv := range strings.Split(envStr, ",") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				opts.Env[parts[0]] = parts[1]
			}
		}
	}

	if preopensStr != "" {
		for _, mapping := range strings.Split(preopensStr, ",") {
			parts := strings.SplitN(mapping, ":", 2)
			if len(parts) == 2 {
				opts.Preopens = append(opts.Preopens, guest.Preopen{
					HostDir:   parts[0],
					GuestPath: parts[1],
				})
			}
		}
	}

	if stdinStr != "" {
		opts.Stdin = strings.NewReader(stdinStr)
	}

	return env.Runner(opts).Run(context.Background(), data)
}
