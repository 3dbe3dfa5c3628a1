package display

import (
	"fmt"
	"io"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/session"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatSession implements Formatter.FormatSession.
func (f *simpleFormatter) FormatSession(w io.Writer, state session.State) error {
	var err error
	if state.IsAuthenticated && state.User != nil {
		_, err = fmt.Fprintf(w, "Signed in as %s", state.User.Username)
		if err == nil && state.User.Email != "" {
			_, err = fmt.Fprintf(w, " <%s>", state.User.Email)
		}
	} else {
		_, err = fmt.Fprint(w, "Anonymous")
	}
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, " | %d visited\n", len(state.VisitedCards)); err != nil {
		return err
	}

	return f.FormatCards(w, state.VisitedCards)
}

// FormatCards implements Formatter.FormatCards.
func (f *simpleFormatter) FormatCards(w io.Writer, cards []card.Card) error {
	for i, c := range cards {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, c.Name); err != nil {
			return err
		}
	}

	return nil
}

// FormatCard implements Formatter.FormatCard.
func (f *simpleFormatter) FormatCard(w io.Writer, c card.Card) error {
	line := c.Name
	if c.ManaCost != "" {
		line += " " + c.ManaCost
	}
	if c.TypeLine != "" {
		line += " | " + c.TypeLine
	}
	if c.HasStats() {
		line += " | " + c.Power + "/" + c.Toughness
	}
	line += " | " + formatPrice(c.Prices.EUR)

	_, err := fmt.Fprintln(w, line)
	return err
}

// FormatCollections implements Formatter.FormatCollections.
func (f *simpleFormatter) FormatCollections(w io.Writer, collections []collection.Collection, totals collection.Totals) error {
	for _, c := range collections {
		if _, err := fmt.Fprintf(w, "%s: %s cards, %s\n", c.Name, formatNumber(c.Count), formatEuro(c.Value)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Total: %s cards, %s\n", formatNumber(totals.Cards), formatEuro(totals.Value))
	return err
}

// FormatOptions implements Formatter.FormatOptions.
func (f *simpleFormatter) FormatOptions(w io.Writer, options []api.Option) error {
	for _, o := range options {
		if _, err := fmt.Fprintln(w, o.Label); err != nil {
			return err
		}
	}

	return nil
}
