// Package display renders vault data for the terminal.
//
// It supports multiple output formats (table, JSON, simple text) for the
// session, card lists, single card previews and collections.
package display

import (
	"io"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/session"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays data in aligned tables.
	FormatTable Format = "table"

	// FormatJSON displays data as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays one line per item.
	FormatSimple Format = "simple"
)

// Formatter formats vault data.
type Formatter interface {
	// FormatSession formats the signed-in user and the visited cards.
	FormatSession(w io.Writer, state session.State) error

	// FormatCards formats a list of cards.
	FormatCards(w io.Writer, cards []card.Card) error

	// FormatCard formats a single card in full.
	FormatCard(w io.Writer, c card.Card) error

	// FormatCollections formats collections with their totals.
	FormatCollections(w io.Writer, collections []collection.Collection, totals collection.Totals) error

	// FormatOptions formats a list of selectable options.
	FormatOptions(w io.Writer, options []api.Option) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// Color enables ANSI styling. It only takes effect when the writer
	// is a terminal.
	Color bool

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool
}
