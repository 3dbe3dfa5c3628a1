package display

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/magicvault/vault/pkg/api"
	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/session"
)

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

func (f *tableFormatter) color(w io.Writer) bool {
	return f.config.Color && isTerminal(w)
}

// FormatSession implements Formatter.FormatSession.
func (f *tableFormatter) FormatSession(w io.Writer, state session.State) error {
	if err := writeHeader(w, "Session", f.config.Compact, f.color(w)); err != nil {
		return err
	}

	rows := [][]string{{"Status", "Anonymous"}}
	if state.IsAuthenticated && state.User != nil {
		email := state.User.Email
		if email == "" {
			email = "-"
		}
		rows = [][]string{
			{"Status", "Signed in"},
			{"User", state.User.Username},
			{"Email", email},
		}
	}
	rows = append(rows, []string{"Visited Cards", formatNumber(len(state.VisitedCards))})

	if err := f.writeTable(w, []string{"Field", "Value"}, rows); err != nil {
		return err
	}

	if len(state.VisitedCards) == 0 {
		return nil
	}

	if err := writeHeader(w, "Recently Visited", f.config.Compact, f.color(w)); err != nil {
		return err
	}
	return f.writeCards(w, state.VisitedCards)
}

// FormatCards implements Formatter.FormatCards.
func (f *tableFormatter) FormatCards(w io.Writer, cards []card.Card) error {
	if err := writeHeader(w, "Cards", f.config.Compact, f.color(w)); err != nil {
		return err
	}
	return f.writeCards(w, cards)
}

func (f *tableFormatter) writeCards(w io.Writer, cards []card.Card) error {
	header := []string{"#", "Name", "Type", "Mana", "P/T", "EUR"}

	// Leave room for the fixed columns; the type line takes what remains.
	typeWidth := max(terminalWidth(w)-40, 16)

	rows := make([][]string, len(cards))
	for i, c := range cards {
		pt := "-"
		if c.HasStats() {
			pt = c.Power + "/" + c.Toughness
		}
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			c.Name,
			truncate(c.TypeLine, typeWidth),
			c.ManaCost,
			pt,
			formatPrice(c.Prices.EUR),
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatCard implements Formatter.FormatCard.
func (f *tableFormatter) FormatCard(w io.Writer, c card.Card) error {
	if err := writeHeader(w, c.Name, f.config.Compact, f.color(w)); err != nil {
		return err
	}

	rows := [][]string{
		{"Type", c.TypeLine},
		{"Mana Cost", c.ManaCost},
	}
	if c.HasStats() {
		rows = append(rows, []string{"P/T", c.Power + " / " + c.Toughness})
	}
	if len(c.ColorIdentity) > 0 {
		rows = append(rows, []string{"Identity", strings.Join(c.ColorIdentity, "")})
	}
	rows = append(rows,
		[]string{"Price", formatPrice(c.Prices.EUR)},
		[]string{"Foil", formatPrice(c.Prices.EURFoil)},
	)
	if c.ImageURIs.PNG != "" {
		rows = append(rows, []string{"Image", c.ImageURIs.PNG})
	}

	if err := f.writeTable(w, []string{"Field", "Value"}, rows); err != nil {
		return err
	}

	if c.OracleText == "" {
		return nil
	}

	_, err := fmt.Fprintf(w, "%s\n\n", c.OracleText)
	return err
}

// FormatCollections implements Formatter.FormatCollections.
func (f *tableFormatter) FormatCollections(w io.Writer, collections []collection.Collection, totals collection.Totals) error {
	if err := writeHeader(w, "Collections", f.config.Compact, f.color(w)); err != nil {
		return err
	}

	rows := make([][]string, len(collections))
	for i, c := range collections {
		rows[i] = []string{c.Name, formatNumber(c.Count), formatEuro(c.Value), c.Color}
	}

	if err := f.writeTable(w, []string{"Name", "Cards", "Value", "Color"}, rows); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s in collections, %s cards\n",
		formatEuro(totals.Value), formatNumber(totals.Cards))
	return err
}

// FormatOptions implements Formatter.FormatOptions.
func (f *tableFormatter) FormatOptions(w io.Writer, options []api.Option) error {
	if err := writeHeader(w, "Sets", f.config.Compact, f.color(w)); err != nil {
		return err
	}

	rows := make([][]string, len(options))
	for i, o := range options {
		rows[i] = []string{fmt.Sprintf("%d", i+1), o.Label}
	}

	return f.writeTable(w, []string{"#", "Name"}, rows)
}

// writeTable writes a formatted table.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	if err := f.writeRow(w, header, widths); err != nil {
		return err
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// writeRow writes a single table row. The last cell is not padded.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	gap := "  "
	if f.config.Compact {
		gap = " "
	}

	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(gap)
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
	}

	_, err := fmt.Fprintln(w, b.String())
	return err
}
