// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// proxyenv keeps the http_proxy and ftp_proxy environment variables of
// a command in step with the system proxy configuration: static
// per-protocol settings or a PAC script, with credentials injected
// from the configured stores and never written to logs in the clear.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/proxyenv-foundation/proxyenv/lib/statefile"
	"github.com/proxyenv-foundation/proxyenv/lib/version"
	"github.com/proxyenv-foundation/proxyenv/resolve"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch os.Args[1] {
	case "resolve":
		return runResolve(os.Args[2:])
	case "exec":
		return runExec(os.Args[2:])
	case "watch":
		return runWatch(os.Args[2:])
	case "state":
		return runState(os.Args[2:])
	case "version":
		fmt.Printf("proxyenv %s\n", version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: proxyenv <subcommand> [flags]

Subcommands:
  resolve     Run one resolution cycle and print the resulting variables
  exec        Resolve, then run a command with the proxy environment set
  watch       Keep resolving as the system configuration changes
  state       Print the recorded outcome of the last cycle
  version     Print version information

Run 'proxyenv <subcommand> --help' for subcommand flags.
`)
}

// commonFlags are the flags every resolving subcommand shares.
type commonFlags struct {
	configPath     string
	configExplicit bool
	targetURL      string
}

func (c *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.configPath, "config", "", "config file (default: $PROXYENV_CONFIG, then <user config dir>/proxyenv/config.yaml)")
	flagSet.StringVar(&c.targetURL, "url", "", "target URL to resolve the proxy for")
}

func (c *commonFlags) finish() {
	c.configExplicit = c.configPath != ""
	if c.configPath == "" {
		if env := os.Getenv("PROXYENV_CONFIG"); env != "" {
			c.configPath = env
			c.configExplicit = true
			return
		}
		if configDir, err := os.UserConfigDir(); err == nil {
			c.configPath = filepath.Join(configDir, "proxyenv", "config.yaml")
		}
	}
}

// setup parses flags, loads the config, and assembles the service.
// The returned source is the one the service reads snapshots from;
// the watch subcommand subscribes to it.
func setup(name string, args []string, flags *commonFlags) (*resolve.Service, sysconfig.Source, config, error) {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.register(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return nil, nil, config{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, nil, config{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	flags.finish()

	cfg, err := loadConfig(flags.configPath, flags.configExplicit)
	if err != nil {
		return nil, nil, config{}, err
	}
	level, err := logLevel(cfg)
	if err != nil {
		return nil, nil, config{}, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	service, source, err := buildService(cfg, logger)
	if err != nil {
		return nil, nil, config{}, err
	}
	return service, source, cfg, nil
}

// runResolve performs a single cycle and prints the variables it set,
// masked, to stdout.
func runResolve(args []string) error {
	var flags commonFlags
	service, _, cfg, err := setup("proxyenv resolve", args, &flags)
	if err != nil {
		return err
	}
	if err := service.ResolveAndApply(context.Background(), flags.targetURL); err != nil {
		return err
	}
	return printState(cfg.StatePath)
}

// runExec resolves once and then replaces the argument command's
// environment with the result. The resolved variables are inherited by
// the child because ResolveAndApply writes the process environment.
func runExec(args []string) error {
	separator := -1
	for i, arg := range args {
		if arg == "--" {
			separator = i
			break
		}
	}
	var commandArgs []string
	if separator >= 0 {
		commandArgs = args[separator+1:]
		args = args[:separator]
	}
	if len(commandArgs) == 0 {
		return fmt.Errorf("usage: proxyenv exec [flags] -- <command> [args]")
	}

	var flags commonFlags
	service, _, _, err := setup("proxyenv exec", args, &flags)
	if err != nil {
		return err
	}
	if err := service.ResolveAndApply(context.Background(), flags.targetURL); err != nil {
		return err
	}

	command := exec.Command(commandArgs[0], commandArgs[1:]...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	command.Env = os.Environ()
	return command.Run()
}

// runWatch keeps resolving until interrupted. Each configuration
// change triggers a cycle; SIGINT or SIGTERM stops the watcher.
func runWatch(args []string) error {
	var flags commonFlags
	service, source, _, err := setup("proxyenv watch", args, &flags)
	if err != nil {
		return err
	}

	targetURL := flags.targetURL
	watcher, err := resolve.NewWatcher(resolve.WatcherOptions{
		Service:          service,
		Source:           source,
		DefaultTargetURL: func() string { return targetURL },
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Close()

	<-ctx.Done()
	return nil
}

// runState prints the recorded outcome of the most recent cycle.
func runState(args []string) error {
	var flags commonFlags
	flagSet := pflag.NewFlagSet("proxyenv state", pflag.ContinueOnError)
	flags.register(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	flags.finish()

	cfg, err := loadConfig(flags.configPath, flags.configExplicit)
	if err != nil {
		return err
	}
	if cfg.StatePath == "" {
		return fmt.Errorf("no state_path configured")
	}
	return printState(cfg.StatePath)
}

// printState reads and prints a state file. Values are masked at
// write time; nothing here can reveal a password.
func printState(path string) error {
	if path == "" {
		return nil
	}
	state, err := statefile.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("no resolution recorded yet")
			return nil
		}
		return err
	}
	fmt.Printf("target:      %s\n", state.TargetURL)
	fmt.Printf("resolved at: %s\n", state.ResolvedAt.Format("2006-01-02 15:04:05 MST"))
	if len(state.Assignments) == 0 {
		fmt.Println("no variables touched")
		return nil
	}
	for _, assignment := range state.Assignments {
		if assignment.Unset {
			fmt.Printf("%-11s (cleared)\n", assignment.Variable)
			continue
		}
		fmt.Printf("%-11s %s\n", assignment.Variable, assignment.MaskedValue)
	}
	return nil
}
