package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"fintrack/internal/cli"
	applog "fintrack/internal/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "fintrack:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		return nil
	}
	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		usage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	// Load .env file for local development
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	// The full-screen view owns the terminal; logs only go to a file there.
	logOut := stderr
	if name == "tui" {
		logOut = io.Discard
	}
	logger, closer, err := cli.SetupLogger(cfg, logOut)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.auth {
		if err := app.RequireSession(); err != nil {
			return err
		}
	}

	// The interactive view runs until the user quits.
	if name != "tui" {
		var cancel context.CancelFunc
		ctx, cancel = app.Timeout(ctx)
		defer cancel()
	}

	logger.Debug("Running command", "command", name, applog.FieldResource, first(rest))
	return cmd.run(ctx, app, rest, stdout)
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: fintrack COMMAND [ARGS]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  fintrack %s\n", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resources: expenses, incomes, categories, bank-accounts, fund-sources, loans,")
	fmt.Fprintln(w, "           installments, recurring-transactions, budgets")
}
