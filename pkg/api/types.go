// Package api is the HTTP client for the vault backend and the public card API.
//
// The vault backend serves accounts, decks, collections and the set list.
// The card API (Scryfall) serves random cards. Both speak JSON.
//
// Example usage:
//
//	client := api.NewClient(api.Config{
//	    BaseURL:     cfg.API.BaseURL,
//	    CardBaseURL: cfg.API.CardBaseURL,
//	    Token:       func(ctx context.Context) string { return raw },
//	}, log)
//
//	sets, err := client.FetchExpansions(ctx)
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/magicvault/vault/pkg/card"
)

// Client talks to the vault backend and the card API.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// Register creates an account.
	Register(ctx context.Context, username, email, password string) error

	// GetUser returns the account record of username.
	GetUser(ctx context.Context, username string) (map[string]interface{}, error)

	// FetchExpansions returns the card sets as selectable options.
	// A response of unexpected shape yields an empty list.
	FetchExpansions(ctx context.Context) ([]Option, error)

	// SearchCards finds cards by name.
	SearchCards(ctx context.Context, name string) ([]card.Card, error)

	// CollectionCards returns the cards of a user's collection.
	CollectionCards(ctx context.Context, username, collection string) ([]card.Card, error)

	// DeckCards returns the cards of a user's deck.
	DeckCards(ctx context.Context, username, deck string) ([]card.Card, error)

	// RemoveCardFromDeck deletes one card from a user's deck.
	RemoveCardFromDeck(ctx context.Context, deck, username, cardName string) error

	// RandomCommander returns a random commander-legal card.
	RandomCommander(ctx context.Context) (card.Card, error)
}

// TokenSource returns the bearer token to send, or "" for none. It is
// called with the request's context.
type TokenSource func(ctx context.Context) string

// Config contains client configuration.
type Config struct {
	// BaseURL of the vault backend (default: http://localhost:8082)
	BaseURL string

	// CardBaseURL of the card API (default: https://api.scryfall.com)
	CardBaseURL string

	// Timeout per request (default: 10s)
	Timeout time.Duration

	// Token supplies the bearer token for backend requests.
	Token TokenSource

	// HTTPClient overrides the underlying client.
	HTTPClient *http.Client
}

// Option is a labelled value for pickers.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
