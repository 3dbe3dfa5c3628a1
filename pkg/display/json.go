package display

import (
	"encoding/json"
	"io"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/session"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

// FormatSession implements Formatter.FormatSession.
func (f *jsonFormatter) FormatSession(w io.Writer, state session.State) error {
	if state.VisitedCards == nil {
		state.VisitedCards = []card.Card{}
	}
	return f.encode(w, state)
}

// FormatCards implements Formatter.FormatCards.
func (f *jsonFormatter) FormatCards(w io.Writer, cards []card.Card) error {
	if cards == nil {
		cards = []card.Card{}
	}
	return f.encode(w, cards)
}

// FormatCard implements Formatter.FormatCard.
func (f *jsonFormatter) FormatCard(w io.Writer, c card.Card) error {
	return f.encode(w, c)
}

// FormatCollections implements Formatter.FormatCollections.
func (f *jsonFormatter) FormatCollections(w io.Writer, collections []collection.Collection, totals collection.Totals) error {
	if collections == nil {
		collections = []collection.Collection{}
	}
	return f.encode(w, struct {
		Collections []collection.Collection `json:"collections"`
		Totals      collection.Totals       `json:"totals"`
	}{collections, totals})
}

// FormatOptions implements Formatter.FormatOptions.
func (f *jsonFormatter) FormatOptions(w io.Writer, options []api.Option) error {
	if options == nil {
		options = []api.Option{}
	}
	return f.encode(w, options)
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(v)
}
