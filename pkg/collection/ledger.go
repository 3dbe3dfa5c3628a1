package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/magicvault/vault/pkg/kvstore"
	"github.com/magicvault/vault/pkg/logger"
)

// Ledger reads and writes the collections in a kvstore.Store.
//
// Every call reads the stored list, so several processes sharing a store
// see each other's changes. Writes within one Ledger are serialized.
type Ledger struct {
	kv     kvstore.Store
	logger logger.Logger
	color  func() string

	mu sync.Mutex
}

// NewLedger creates a Ledger over kv.
func NewLedger(kv kvstore.Store, log logger.Logger) *Ledger {
	return &Ledger{
		kv:     kv,
		logger: log.With("component", "collection"),
		color:  randomColor,
	}
}

// List returns all collections in insertion order.
func (l *Ledger) List(ctx context.Context) ([]Collection, error) {
	return l.load(ctx)
}

// Add appends a collection with a random color and returns it.
func (l *Ledger) Add(ctx context.Context, name string, count int, value float64) (Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Collection{}, ErrEmptyName
	}
	if count < 0 || value < 0 {
		return Collection{}, ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	collections, err := l.load(ctx)
	if err != nil {
		return Collection{}, err
	}

	for _, c := range collections {
		if c.Name == name {
			return Collection{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}

	added := Collection{Name: name, Count: count, Value: value, Color: l.color()}
	collections = append(collections, added)

	if err := l.save(ctx, collections); err != nil {
		return Collection{}, err
	}

	l.logger.Info("collection added", "name", name, "count", count, "value", value)
	return added, nil
}

// Delete removes the collection called name.
func (l *Ledger) Delete(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	collections, err := l.load(ctx)
	if err != nil {
		return err
	}

	kept := collections[:0]
	for _, c := range collections {
		if c.Name != name {
			kept = append(kept, c)
		}
	}

	if len(kept) == len(collections) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := l.save(ctx, kept); err != nil {
		return err
	}

	l.logger.Info("collection deleted", "name", name)
	return nil
}

// Filter returns the collections whose name contains substr, ignoring case.
// An empty substr matches everything.
func Filter(collections []Collection, substr string) []Collection {
	needle := strings.ToLower(substr)

	out := make([]Collection, 0, len(collections))
	for _, c := range collections {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Sum adds up the card counts and values of collections.
func Sum(collections []Collection) Totals {
	var t Totals
	for _, c := range collections {
		t.Cards += c.Count
		t.Value += c.Value
	}
	return t
}

func (l *Ledger) load(ctx context.Context) ([]Collection, error) {
	raw, err := l.kv.Get(ctx, KeyCollections)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []Collection{}, nil
		}
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}
	if raw == "" {
		return []Collection{}, nil
	}

	var collections []Collection
	if err := json.Unmarshal([]byte(raw), &collections); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	if collections == nil {
		collections = []Collection{}
	}

	return collections, nil
}

func (l *Ledger) save(ctx context.Context, collections []Collection) error {
	data, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("failed to encode collections: %w", err)
	}

	if err := l.kv.Set(ctx, KeyCollections, string(data)); err != nil {
		return fmt.Errorf("failed to write collections: %w", err)
	}

	return nil
}

// randomColor returns a random #RRGGBB color.
func randomColor() string {
	return fmt.Sprintf("#%06X", rand.IntN(1<<24))
}
