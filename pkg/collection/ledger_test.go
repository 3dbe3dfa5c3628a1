package collection

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/magicvault/vault/pkg/kvstore"
	"github.com/magicvault/vault/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) (*Ledger, kvstore.Store) {
	t.Helper()

	kv := kvstore.NewMemory()
	l := NewLedger(kv, logger.Noop())
	ctx := context.Background()

	_, err := l.Add(ctx, "Cartas para cambiar", 454, 253)
	require.NoError(t, err)
	_, err = l.Add(ctx, "Caja Ravnica Remastered", 231, 123)
	require.NoError(t, err)
	_, err = l.Add(ctx, "Caja Commander Masters", 121, 12.5)
	require.NoError(t, err)

	return l, kv
}

func TestListEmpty(t *testing.T) {
	l := NewLedger(kvstore.NewMemory(), logger.Noop())

	got, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdd(t *testing.T) {
	l, _ := seeded(t)

	got, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Cartas para cambiar", got[0].Name)
	assert.Equal(t, 454, got[0].Count)

	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	for _, c := range got {
		assert.Regexp(t, hex, c.Color)
	}
}

func TestAddValidation(t *testing.T) {
	l, _ := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		count   int
		value   float64
		wantErr error
	}{
		{"empty name", "", 1, 1, ErrEmptyName},
		{"blank name", "   ", 1, 1, ErrEmptyName},
		{"duplicate", "Caja Commander Masters", 1, 1, ErrDuplicateName},
		{"negative count", "New", -1, 1, ErrNegativeAmount},
		{"negative value", "New", 1, -0.5, ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Add(ctx, tt.input, tt.count, tt.value)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := l.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDelete(t *testing.T) {
	l, _ := seeded(t)
	ctx := context.Background()

	require.NoError(t, l.Delete(ctx, "Caja Ravnica Remastered"))

	got, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cartas para cambiar", "Caja Commander Masters"}, []string{got[0].Name, got[1].Name})

	assert.ErrorIs(t, l.Delete(ctx, "Caja Ravnica Remastered"), ErrNotFound)
}

func TestFilter(t *testing.T) {
	l, _ := seeded(t)

	tests := []struct {
		substr string
		want   int
	}{
		{"", 3},
		{"caja", 2},
		{"CAJA", 2},
		{"ravnica", 1},
		{"zendikar", 0},
	}

	all, err := l.List(context.Background())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.substr, func(t *testing.T) {
			assert.Len(t, Filter(all, tt.substr), tt.want)
		})
	}
}

func TestSum(t *testing.T) {
	l, _ := seeded(t)

	all, err := l.List(context.Background())
	require.NoError(t, err)

	totals := Sum(all)
	assert.Equal(t, 806, totals.Cards)
	assert.InDelta(t, 388.5, totals.Value, 1e-9)
}

func TestPersistedAcrossLedgers(t *testing.T) {
	_, kv := seeded(t)

	other := NewLedger(kv, logger.Noop())
	got, err := other.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCorruptData(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(context.Background(), KeyCollections, "{broken"))

	_, err := NewLedger(kv, logger.Noop()).List(context.Background())
	assert.Error(t, err)
}

type brokenStore struct {
	kvstore.Store
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("read-only")
}

func TestAddWriteFailure(t *testing.T) {
	l := NewLedger(brokenStore{kvstore.NewMemory()}, logger.Noop())

	_, err := l.Add(context.Background(), "x", 1, 1)
	assert.Error(t, err)
}

func TestFixedColor(t *testing.T) {
	l := NewLedger(kvstore.NewMemory(), logger.Noop())
	l.color = func() string { return "#00BFA5" }

	c, err := l.Add(context.Background(), "Binder", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, "#00BFA5", c.Color)
}
