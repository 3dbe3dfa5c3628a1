package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/magicvault/vault/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, backend, cards http.Handler, token string) Client {
	t.Helper()

	cfg := Config{Token: func(context.Context) string { return token }}

	if backend != nil {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		cfg.BaseURL = srv.URL
	}
	if cards != nil {
		srv := httptest.NewServer(cards)
		t.Cleanup(srv.Close)
		cfg.CardBaseURL = srv.URL
	}

	return NewClient(cfg, logger.Noop())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestLogin(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username == "alice" && req.Password == "secret" {
			writeJSON(t, w, http.StatusOK, map[string]string{"token": "tok-123"})
			return
		}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	})

	c := newTestClient(t, backend, nil, "")

	token, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "invalid credentials", statusErr.Message)
}

func TestLoginValidation(t *testing.T) {
	c := NewClient(Config{}, logger.Noop())

	_, err := c.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrEmptyCredentials)

	assert.ErrorIs(t, c.Register(context.Background(), "bob", "b@x.com", ""), ErrEmptyCredentials)
}

func TestLoginWithoutToken(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{})
	})

	_, err := newTestClient(t, backend, nil, "").Login(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	var got registerRequest
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := newTestClient(t, backend, nil, "").Register(context.Background(), "bob", "bob@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, registerRequest{"bob", "bob@x.com", "pw"}, got)
}

func TestBearerToken(t *testing.T) {
	var backendAuth, cardAuth string

	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]string{"username": "alice"})
	})
	cards := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cardAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]string{"name": "Atraxa"})
	})

	c := newTestClient(t, backend, cards, "tok-abc")

	user, err := c.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "Bearer tok-abc", backendAuth)

	_, err = c.RandomCommander(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cardAuth, "the token is never sent to the card API")
}

func TestTokenSourceGetsRequestContext(t *testing.T) {
	type ctxKey struct{}

	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"username": "alice"})
	})
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	var seen interface{}
	c := NewClient(Config{
		BaseURL: srv.URL,
		Token: func(ctx context.Context) string {
			seen = ctx.Value(ctxKey{})
			return "tok"
		},
	}, logger.Noop())

	ctx := context.WithValue(context.Background(), ctxKey{}, "caller")
	_, err := c.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "caller", seen)
}

func TestRequestIDHeader(t *testing.T) {
	var ids []string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
		writeJSON(t, w, http.StatusOK, map[string]string{"username": "alice"})
	})

	c := newTestClient(t, backend, nil, "")
	for range 2 {
		_, err := c.GetUser(context.Background(), "alice")
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "request id %q", id)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestNoBearerWhenAnonymous(t *testing.T) {
	var auth string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	})

	_, err := newTestClient(t, backend, nil, "").FetchExpansions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestFetchExpansions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Option
	}{
		{
			name: "sets",
			body: `{"data":[{"name":"Dominaria"},{"name":"Zendikar Rising"}]}`,
			want: []Option{
				{Label: "Dominaria", Value: "Dominaria"},
				{Label: "Zendikar Rising", Value: "Zendikar Rising"},
			},
		},
		{name: "empty data", body: `{"data":[]}`, want: []Option{}},
		{name: "missing data", body: `{"sets":[]}`, want: []Option{}},
		{name: "data is not a list", body: `{"data":"oops"}`, want: []Option{}},
		{name: "bare array", body: `[{"name":"Dominaria"}]`, want: []Option{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sets", r.URL.Path)
				_, _ = w.Write([]byte(tt.body)) // nolint:errcheck
			})

			got, err := newTestClient(t, backend, nil, "").FetchExpansions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchCards(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"name":"Sol Ring"},{"name":"Sol Talisman"}]`},
		{"data envelope", `{"data":[{"name":"Sol Ring"},{"name":"Sol Talisman"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/cards/search", r.URL.Path)
				assert.Equal(t, "Sol Ring", r.URL.Query().Get("name"))
				_, _ = w.Write([]byte(tt.body)) // nolint:errcheck
			})

			got, err := newTestClient(t, backend, nil, "").SearchCards(context.Background(), "Sol Ring")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "Sol Ring", got[0].Name)
		})
	}
}

func TestSearchCardsNumericFields(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"64f1c2aa","name":"Grizzly Bears","power":2,"toughness":2,"prices":{"eur":0.25,"eur_foil":null}}]`)) // nolint:errcheck
	})

	got, err := newTestClient(t, backend, nil, "").SearchCards(context.Background(), "Grizzly")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "64f1c2aa", got[0].ID)
	assert.Equal(t, "2", got[0].Power)
	require.NotNil(t, got[0].Prices.EUR)
	assert.InDelta(t, 0.25, *got[0].Prices.EUR, 1e-9)
	assert.Nil(t, got[0].Prices.EURFoil)
}

func TestCollectionAndDeckCards(t *testing.T) {
	var paths []string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"Llanowar Elves"}]`)) // nolint:errcheck
	})

	c := newTestClient(t, backend, nil, "tok")
	ctx := context.Background()

	got, err := c.CollectionCards(ctx, "alice", "Green Stuff")
	require.NoError(t, err)
	assert.Equal(t, "Llanowar Elves", got[0].Name)

	_, err = c.DeckCards(ctx, "alice", "elves")
	require.NoError(t, err)

	require.NoError(t, c.RemoveCardFromDeck(ctx, "elves", "alice", "Llanowar Elves"))

	assert.Equal(t, []string{
		"GET /users/alice/collections/Green%20Stuff/cards",
		"GET /users/alice/decks/elves/cards",
		"DELETE /users/alice/decks/elves/cards/Llanowar%20Elves",
	}, paths)
}

func TestRandomCommander(t *testing.T) {
	cards := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/random", r.URL.Path)
		assert.Equal(t, "is:commander", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"name":"Atraxa, Praetors' Voice","type_line":"Legendary Creature — Phyrexian Angel Horror","power":"4","toughness":"4"}`)) // nolint:errcheck
	})

	got, err := newTestClient(t, nil, cards, "").RandomCommander(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Atraxa, Praetors' Voice", got.Name)
	assert.Equal(t, "4", got.Power)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantUnauth  bool
	}{
		{"json error", http.StatusBadRequest, `{"error":"bad name"}`, "bad name", false},
		{"json message", http.StatusNotFound, `{"message":"no such user"}`, "no such user", false},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom", false},
		{"empty body", http.StatusUnauthorized, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body)) // nolint:errcheck
			})

			_, err := newTestClient(t, backend, nil, "").GetUser(context.Background(), "ghost")

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.wantMessage, statusErr.Message)
			assert.Equal(t, tt.wantUnauth, errors.Is(err, ErrUnauthorized))
			assert.Contains(t, err.Error(), "/users/ghost")
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, logger.Noop())
	_, err := c.FetchExpansions(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestContextCancelled(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	c := newTestClient(t, backend, nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.SearchCards(ctx, "anything")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
