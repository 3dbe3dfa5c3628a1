package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/config"
	"github.com/magicvault/vault/pkg/display"
	"github.com/magicvault/vault/pkg/kvstore"
	"github.com/magicvault/vault/pkg/logger"
	"github.com/magicvault/vault/pkg/session"
	"github.com/magicvault/vault/pkg/token"
	"golang.org/x/term"
)

// app wires the services a command needs.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	kv        kvstore.Store
	session   *session.Store
	ledger    *collection.Ledger
	client    api.Client
	codec     token.Codec
	format    display.Format
	formatter display.Formatter

	out io.Writer
	in  *bufio.Reader

	// stdinFd is the descriptor checked for an interactive terminal, or -1.
	stdinFd int
}

// newApp opens the configured store and restores the session.
//
// format overrides cfg.Display.DefaultFormat when non-empty.
func newApp(ctx context.Context, cfg *config.Config, format string, out io.Writer) (*app, error) {
	if format == "" {
		format = cfg.Display.DefaultFormat
	}
	f, err := display.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	kv, err := kvstore.Open(ctx, kvstore.Config{
		Driver:    kvstore.Driver(cfg.Storage.Driver),
		DBPath:    cfg.Storage.DBPath,
		Dir:       cfg.Storage.Dir,
		RedisURL:  cfg.Storage.RedisURL,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Timeout:   cfg.Storage.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	codec := token.NewJWT()
	a := &app{
		cfg:       cfg,
		log:       log,
		kv:        kv,
		session:   session.New(kv, codec, session.Config{HistorySize: cfg.Session.HistorySize}, log),
		ledger:    collection.NewLedger(kv, log),
		codec:     codec,
		format:    f,
		formatter: display.New(display.Config{Format: f, Color: cfg.Display.ColorEnabled}),
		out:       out,
		in:        bufio.NewReader(os.Stdin),
		stdinFd:   int(os.Stdin.Fd()),
	}

	a.client = api.NewClient(api.Config{
		BaseURL:     cfg.API.BaseURL,
		CardBaseURL: cfg.API.CardBaseURL,
		Timeout:     cfg.API.Timeout,
		Token:       a.bearerToken,
	}, log)

	if err := a.session.Initialize(ctx); err != nil {
		log.Warn("session not fully restored", "error", err)
	}

	return a, nil
}

// Close releases the store.
func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Error("failed to close store", "error", err)
	}
}

// dispatch runs command with its arguments.
func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.runLogin(ctx, args)
	case "register":
		return a.runRegister(ctx, args)
	case "logout":
		return a.runLogout(ctx)
	case "whoami":
		return a.runWhoami(ctx, args)
	case "visit":
		return a.runVisit(ctx, args)
	case "history":
		return a.runHistory(ctx, args)
	case "commander":
		return a.runCommander(ctx)
	case "sets":
		return a.runSets(ctx)
	case "collection":
		return a.runCollection(ctx, args)
	case "deck":
		return a.runDeck(ctx, args)
	case "watch":
		return a.runWatch(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// bearerToken returns the persisted token while a user is signed in.
func (a *app) bearerToken(ctx context.Context) string {
	if !a.session.IsAuthenticated() {
		return ""
	}

	raw, err := a.kv.Get(ctx, session.KeyToken)
	if err != nil {
		a.log.Debug("no bearer token", "error", err)
		return ""
	}
	return raw
}

// currentUser returns the signed-in username or an error asking to log in.
func (a *app) currentUser() (string, error) {
	user := a.session.User()
	if user == nil {
		return "", fmt.Errorf("not signed in: run 'vault login' first")
	}
	return user.Username, nil
}

// prompt asks for a value on the terminal. Secret values are read without echo.
func (a *app) prompt(label string, secret bool) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)

	if secret && a.stdinFd >= 0 && term.IsTerminal(a.stdinFd) {
		value, err := term.ReadPassword(a.stdinFd)
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(value), nil
	}

	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
