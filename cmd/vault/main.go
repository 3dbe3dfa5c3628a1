// Package main provides the vault CLI.
//
// Vault is a terminal companion for Magic: The Gathering collectors. It keeps
// the signed-in user and the recently visited cards across runs, looks cards
// up, and tracks local collections.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/magicvault/vault/pkg/config"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the flags accepted before the command.
type globalOptions struct {
	configPath  string
	format      string
	showVersion bool
}

// parseGlobal parses the global flags and returns the remaining arguments.
func parseGlobal(args []string) (globalOptions, []string, error) {
	var opts globalOptions

	fs := flag.NewFlagSet("vault", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to configuration file")
	fs.StringVar(&opts.format, "format", "", "output format (table, json, simple)")
	fs.BoolVar(&opts.showVersion, "version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	return opts, fs.Args(), nil
}

// run executes the main application logic.
func run(args []string, out io.Writer) error {
	opts, rest, err := parseGlobal(args)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Fprintf(out, "vault %s\n", version)
		return nil
	}

	if len(rest) == 0 {
		return showUsage(out)
	}

	command, cmdArgs := rest[0], rest[1:]

	// Commands that need no store.
	switch command {
	case "help":
		return showUsage(out)
	case "config":
		cmd := &configCommand{configPath: opts.configPath, out: out, in: os.Stdin}
		return cmd.Execute(cmdArgs)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, opts.format, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.dispatch(ctx, command, cmdArgs)
}

// loadConfig loads the configuration from path, or from the standard
// locations when path is empty.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// showUsage displays usage information.
func showUsage(out io.Writer) error {
	usage := `Vault - Magic: The Gathering collection companion

Usage:
  vault [flags] <command> [command flags]

Commands:
  login       Sign in (-u user -p password, or -u user -token jwt)
  register    Create an account (-u user -e email -p password)
  logout      Sign out; visited cards are kept
  whoami      Show the signed-in user and visited cards (-v adds token details)
  visit       Look up a card by name and record it as visited
  history     List visited cards (history clear empties it)
  commander   Show a random commander and record it as visited
  sets        List card sets
  collection  Local collections (list, add, rm, cards)
  deck        Remote decks (show, rm)
  watch       Follow session changes made by other processes (file driver)
  config      Configuration management (show, path, reset)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -format     Output format (table, json, simple)
  -version    Show version information

Examples:
  # Sign in, prompting for the password
  vault login -u alice

  # Look up a card
  vault visit "Sol Ring"

  # Show recently visited cards as JSON
  vault -format json history

  # Add a collection
  vault collection add -name "Trade binder" -count 454 -value 253

  # Follow changes from another terminal
  VAULT_STORAGE_DRIVER=file vault watch

Version: %s
`

	_, err := fmt.Fprintf(out, usage, version)
	return err
}
