// Package collection keeps the user's local ledger of card collections.
//
// A collection is a named pile of cards with a card count and an
// estimated value in euros. The ledger is stored as JSON under a single
// key of the same kvstore.Store that holds the session.
//
// Example usage:
//
//	ledger := collection.NewLedger(kv, log)
//	if _, err := ledger.Add(ctx, "Trade binder", 454, 253); err != nil {
//	    return err
//	}
//	all, _ := ledger.List(ctx)
//	totals := collection.Sum(all)
package collection

// KeyCollections holds the JSON-encoded collections.
const KeyCollections = "collectionsData"

// Collection is one named collection.
type Collection struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Value float64 `json:"value"`

	// Color is a #RRGGBB hex color used to tell collections apart.
	Color string `json:"color"`
}

// Totals sums all collections.
type Totals struct {
	Cards int     `json:"cards"`
	Value float64 `json:"value"`
}
