// Package card defines the card record shared by the API client, the
// session history and the display layer.
//
// A Card decoded from JSON keeps the exact object it came from and
// encodes back to it unchanged, so fields this package knows nothing
// about survive a round trip through the session store. The typed fields
// are a read-only view used for display; they are filled tolerantly, so
// power "2" and 2 both read as "2" and a price may be a string, a number
// or null.
package card

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Card is a single printed card as served by the card APIs.
//
// Changing the fields of a decoded Card does not change its encoding.
// Cards built in code have no source object and encode from their fields.
type Card struct {
	ID            string
	Name          string
	TypeLine      string
	OracleText    string
	ManaCost      string
	Power         string
	Toughness     string
	Colors        []string
	ColorIdentity []string
	ImageURIs     ImageURIs
	Prices        Prices

	raw json.RawMessage
}

// ImageURIs holds image references for a card face.
type ImageURIs struct {
	PNG string
}

// Prices holds market prices in euros. Nil means no price is known.
type Prices struct {
	EUR     *float64
	EURFoil *float64
}

// wireCard is the encoding of a Card that has no source object.
type wireCard struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	TypeLine      string   `json:"type_line,omitempty"`
	OracleText    string   `json:"oracle_text,omitempty"`
	ManaCost      string   `json:"mana_cost,omitempty"`
	Power         string   `json:"power,omitempty"`
	Toughness     string   `json:"toughness,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	ColorIdentity []string `json:"color_identity,omitempty"`
	ImageURIs     struct {
		PNG string `json:"png,omitempty"`
	} `json:"image_uris"`
	Prices struct {
		EUR     string `json:"eur,omitempty"`
		EURFoil string `json:"eur_foil,omitempty"`
	} `json:"prices"`
}

// UnmarshalJSON keeps data verbatim and fills the display fields from it.
// Fields of an unexpected type are left empty rather than failing the card.
func (c *Card) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}

	*c = Card{
		ID:            text(fields["id"]),
		Name:          text(fields["name"]),
		TypeLine:      text(fields["type_line"]),
		OracleText:    text(fields["oracle_text"]),
		ManaCost:      text(fields["mana_cost"]),
		Power:         text(fields["power"]),
		Toughness:     text(fields["toughness"]),
		Colors:        textList(fields["colors"]),
		ColorIdentity: textList(fields["color_identity"]),
		raw:           compact.Bytes(),
	}

	images := object(fields["image_uris"])
	c.ImageURIs.PNG = text(images["png"])

	prices := object(fields["prices"])
	c.Prices.EUR = price(prices["eur"])
	c.Prices.EURFoil = price(prices["eur_foil"])

	return nil
}

// MarshalJSON returns the source object of a decoded card, or the card's
// fields otherwise.
func (c Card) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}

	w := wireCard{
		ID:            c.ID,
		Name:          c.Name,
		TypeLine:      c.TypeLine,
		OracleText:    c.OracleText,
		ManaCost:      c.ManaCost,
		Power:         c.Power,
		Toughness:     c.Toughness,
		Colors:        c.Colors,
		ColorIdentity: c.ColorIdentity,
	}
	w.ImageURIs.PNG = c.ImageURIs.PNG
	w.Prices.EUR = formatPrice(c.Prices.EUR)
	w.Prices.EURFoil = formatPrice(c.Prices.EURFoil)

	return json.Marshal(w)
}

// HasStats reports whether the card carries power/toughness.
func (c Card) HasStats() bool {
	return c.Power != "" || c.Toughness != ""
}

// FilterByName returns the cards whose name contains substr.
// Matching is case-sensitive; an empty substr returns cards unchanged.
func FilterByName(cards []Card, substr string) []Card {
	if substr == "" {
		return cards
	}

	filtered := make([]Card, 0, len(cards))
	for _, c := range cards {
		if strings.Contains(c.Name, substr) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// RemoveByName returns cards without any entry named name.
func RemoveByName(cards []Card, name string) []Card {
	kept := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	return kept
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

// object decodes a nested object; anything else reads as empty.
func object(data json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if isNull(data) {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// text reads a string, or the literal of a number.
func text(data json.RawMessage) string {
	if isNull(data) {
		return ""
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	return ""
}

func textList(data json.RawMessage) []string {
	var raw []json.RawMessage
	if isNull(data) || json.Unmarshal(data, &raw) != nil {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// price reads "1.45", 1.45 or null. Empty or malformed strings are nil.
func price(data json.RawMessage) *float64 {
	s := text(data)
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
