package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/display"
	"github.com/magicvault/vault/pkg/session"
	"github.com/magicvault/vault/pkg/token"
)

// loginOptions holds the login flags.
type loginOptions struct {
	username string
	password string
	token    string
}

func parseLogin(args []string) (loginOptions, error) {
	var opts loginOptions

	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.StringVar(&opts.username, "u", "", "username")
	fs.StringVar(&opts.password, "p", "", "password (prompted when omitted)")
	fs.StringVar(&opts.token, "token", "", "import an existing token instead of calling the API")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	return opts, nil
}

// runLogin signs in through the API, or imports a token given with -token.
func (a *app) runLogin(ctx context.Context, args []string) error {
	opts, err := parseLogin(args)
	if err != nil {
		return err
	}

	if opts.username == "" {
		if opts.username, err = a.prompt("Username", false); err != nil {
			return err
		}
	}

	raw := opts.token
	if raw == "" {
		if opts.password == "" {
			if opts.password, err = a.prompt("Password", true); err != nil {
				return err
			}
		}

		raw, err = a.client.Login(ctx, opts.username, opts.password)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return fmt.Errorf("wrong username or password")
			}
			return fmt.Errorf("login failed: %w", err)
		}
	}

	profile := session.UserProfile{Username: opts.username}

	// The account record is optional; its fields are kept alongside the profile.
	if record, err := a.client.GetUser(ctx, opts.username); err != nil {
		a.log.Debug("user record unavailable", "username", opts.username, "error", err)
	} else {
		for _, key := range []string{"password", "username", "email"} {
			delete(record, key)
		}
		profile.Extra = record
	}

	if err := a.session.Login(ctx, profile, raw); err != nil {
		var decodeErr *token.DecodeError
		if errors.As(err, &decodeErr) {
			return fmt.Errorf("the server returned an unreadable token: %w", err)
		}
		return err
	}

	user := a.session.User()
	if user.Email != "" {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.Username, user.Email)
	} else {
		fmt.Fprintf(a.out, "Signed in as %s\n", user.Username)
	}
	return nil
}

// runRegister creates an account.
func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		p, err := a.prompt("Password", true)
		if err != nil {
			return err
		}
		*password = p
	}

	if err := a.client.Register(ctx, *username, *email, *password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(a.out, "Account %s created. Run 'vault login -u %s' to sign in.\n", *username, *username)
	return nil
}

// runLogout signs out.
func (a *app) runLogout(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	if err := a.session.Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// runWhoami shows the session. With -v the subject and expiry of the
// stored token follow on one line; JSON output stays a single document.
func (a *app) runWhoami(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "also show the token subject and expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.formatter.FormatSession(a.out, a.session.Snapshot()); err != nil {
		return err
	}
	if !*verbose || a.format == display.FormatJSON {
		return nil
	}

	raw := a.bearerToken(ctx)
	if raw == "" {
		return nil
	}

	claims, err := a.codec.Decode(raw)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, describeToken(claims, time.Now()))
	return nil
}

func describeToken(claims token.Claims, now time.Time) string {
	subject := claims.Subject()
	if subject == "" {
		subject = "unknown"
	}

	exp, ok := claims.ExpiresAt()
	switch {
	case !ok:
		return fmt.Sprintf("Token subject %s, no expiry", subject)
	case !exp.After(now):
		return fmt.Sprintf("Token subject %s, expired %s", subject, exp.UTC().Format(time.RFC3339))
	default:
		return fmt.Sprintf("Token subject %s, expires %s", subject, exp.UTC().Format(time.RFC3339))
	}
}
