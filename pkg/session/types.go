// Package session owns the signed-in user and the recently visited cards.
//
// A Store is the single authority for "who is logged in" and "what was
// recently viewed". It is constructed explicitly and handed to whatever
// needs it; there is no package-level instance. State lives in memory and
// is written through to a kvstore.Store on every mutation, so it survives
// process restarts.
//
// Example usage:
//
//	store := session.New(kv, token.NewJWT(), session.Config{}, log)
//	if err := store.Initialize(ctx); err != nil {
//	    log.Warn("session not restored", "error", err)
//	}
//
//	if err := store.Login(ctx, session.UserProfile{Username: "alice"}, raw); err != nil {
//	    return err
//	}
//	_ = store.AddVisitedCard(ctx, c)
//
// The token is decoded without signature verification. Claims are used
// for display only and never for authorization decisions.
package session

import (
	"github.com/magicvault/vault/pkg/card"
)

// Persisted keys.
const (
	// KeyToken holds the raw bearer token.
	KeyToken = "loginToken"

	// KeyUser holds the JSON-encoded UserProfile.
	KeyUser = "userData"

	// KeyVisitedCards holds the JSON-encoded visited cards, newest first.
	KeyVisitedCards = "visitedCardsData"
)

// DefaultHistorySize is the number of visited cards kept.
const DefaultHistorySize = 6

// State is a point-in-time copy of the session.
//
// Invariant: IsAuthenticated == (User != nil).
type State struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *UserProfile `json:"user"`
	VisitedCards    []card.Card  `json:"visited_cards"`
}

// Config contains session store configuration.
type Config struct {
	// HistorySize bounds the visited cards list (default: DefaultHistorySize).
	HistorySize int
}

// Listener receives the new state after every in-memory change.
//
// Listeners run synchronously on the mutating goroutine and must not call
// mutating Store methods.
type Listener func(State)
