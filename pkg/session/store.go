package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/kvstore"
	"github.com/magicvault/vault/pkg/logger"
	"github.com/magicvault/vault/pkg/token"
	"golang.org/x/sync/errgroup"
)

// Store holds the session state and persists it through a kvstore.Store.
//
// Mutations are serialized: each one holds the writer lock across its
// read-modify-write and its persistence calls, so overlapping calls from
// different goroutines never lose an update. Reads return copies.
type Store struct {
	kv     kvstore.Store
	codec  token.Codec
	logger logger.Logger
	config Config

	initOnce sync.Once
	initErr  error

	// writeMu serializes mutations end to end.
	writeMu sync.Mutex

	// mu guards state.
	mu    sync.RWMutex
	state State

	listenersMu sync.Mutex
	listeners   []listenerEntry
	nextID      int
}

type listenerEntry struct {
	id int
	fn Listener
}

// New creates a Store. State is loaded from kv by Initialize, which also
// runs implicitly on the first mutation.
func New(kv kvstore.Store, codec token.Codec, cfg Config, log logger.Logger) *Store {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}

	return &Store{
		kv:     kv,
		codec:  codec,
		logger: log.With("component", "session"),
		config: cfg,
	}
}

// Initialize loads the persisted session. It runs once per Store; later
// calls return the first call's result.
//
// The visited cards are restored independently of authentication. If a
// token and a user record are both present the token is decoded and its
// email claim merged into the user; a decode failure is returned as a
// *token.DecodeError and the session stays anonymous.
//
// Keys are read independently. A read failure is returned as a
// *PersistenceError and only empties the part that key belongs to.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		state, err := s.readState(ctx, "initialize", State{})
		s.setState(state)
		s.initErr = err

		if err != nil {
			s.logger.Warn("session restored with errors", "error", err)
			return
		}

		s.logger.Debug("session restored",
			"authenticated", state.IsAuthenticated,
			"visited_cards", len(state.VisitedCards))
	})

	return s.initErr
}

// Reload replaces the in-memory state with the persisted one. Parts whose
// keys cannot be read keep their current values.
//
// Used when another process may have changed the store.
func (s *Store) Reload(ctx context.Context) error {
	s.ensureInitialized(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state, err := s.readState(ctx, "reload", s.Snapshot())
	s.setState(state)

	return err
}

// Login decodes rawToken, merges its email claim into user and persists
// both the token and the merged profile.
//
// The claim overrides any Email the caller set. On a decode error the
// state is left unchanged.
func (s *Store) Login(ctx context.Context, user UserProfile, rawToken string) error {
	if user.Username == "" {
		return ErrEmptyUsername
	}

	s.ensureInitialized(ctx)

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return err
	}

	merged := user.Clone()
	merged.Email = claims.Email()

	record, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.User = &merged
	})

	s.logger.Info("logged in", "username", merged.Username)

	if err := s.kv.Set(ctx, KeyToken, rawToken); err != nil {
		return &PersistenceError{Op: "login", Key: KeyToken, Err: err}
	}
	if err := s.kv.Set(ctx, KeyUser, string(record)); err != nil {
		return &PersistenceError{Op: "login", Key: KeyUser, Err: err}
	}

	return nil
}

// Logout clears the signed-in user and removes the persisted token and
// profile. Visited cards are kept.
func (s *Store) Logout(ctx context.Context) error {
	s.ensureInitialized(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.update(func(st *State) {
		st.IsAuthenticated = false
		st.User = nil
	})

	s.logger.Info("logged out")

	var errs []error
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, &PersistenceError{Op: "logout", Key: key, Err: err})
		}
	}

	return errors.Join(errs...)
}

// AddVisitedCard puts c at the front of the visited cards and drops
// entries beyond the history size. The same card may appear repeatedly.
func (s *Store) AddVisitedCard(ctx context.Context, c card.Card) error {
	s.ensureInitialized(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var visited []card.Card
	s.update(func(st *State) {
		visited = prepend(st.VisitedCards, c, s.config.HistorySize)
		st.VisitedCards = visited
	})

	s.logger.Debug("card visited", "card", c.Name, "history", len(visited))

	data, err := json.Marshal(visited)
	if err != nil {
		return fmt.Errorf("failed to encode visited cards: %w", err)
	}

	if err := s.kv.Set(ctx, KeyVisitedCards, string(data)); err != nil {
		return &PersistenceError{Op: "visit", Key: KeyVisitedCards, Err: err}
	}

	return nil
}

// ClearVisitedCards empties the visited cards in memory and in storage.
func (s *Store) ClearVisitedCards(ctx context.Context) error {
	s.ensureInitialized(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.update(func(st *State) {
		st.VisitedCards = nil
	})

	s.logger.Info("visited cards cleared")

	if err := s.kv.Remove(ctx, KeyVisitedCards); err != nil {
		return &PersistenceError{Op: "clear", Key: KeyVisitedCards, Err: err}
	}

	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.IsAuthenticated
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *UserProfile {
	return s.Snapshot().User
}

// VisitedCards returns the visited cards, newest first.
func (s *Store) VisitedCards() []card.Card {
	return s.Snapshot().VisitedCards
}

// Subscribe registers fn to be called after every state change and
// returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()

		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ensureInitialized runs Initialize for mutations. A failed restore does
// not block them: signing in again is the usual recovery.
func (s *Store) ensureInitialized(ctx context.Context) {
	_ = s.Initialize(ctx) // nolint:errcheck
}

// update applies fn to the state and notifies listeners.
// Callers hold writeMu.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// setState replaces the state and notifies listeners.
// Callers hold writeMu.
func (s *Store) setState(state State) {
	s.update(func(st *State) {
		*st = state
	})
}

func (s *Store) notify(state State) {
	s.listenersMu.Lock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn(state.clone())
	}
}

// readState loads the three persisted keys concurrently and rebuilds the
// state from them. Each key is read on its own: a failed read leaves the
// part of base it feeds in place and is reported in the joined error, so
// the visited cards survive a failed token read and the other way round.
func (s *Store) readState(ctx context.Context, op string, base State) (State, error) {
	keys := [...]string{KeyToken, KeyUser, KeyVisitedCards}
	var (
		values  [len(keys)]string
		present [len(keys)]bool
		readErr [len(keys)]error
	)

	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			values[i], present[i], readErr[i] = s.get(ctx, op, key)
			return nil
		})
	}
	_ = g.Wait() // nolint:errcheck

	state := base.clone()
	var errs []error

	for _, err := range readErr {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if readErr[2] == nil {
		state.VisitedCards = nil
		if present[2] {
			var visited []card.Card
			if err := json.Unmarshal([]byte(values[2]), &visited); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrCorruptState, KeyVisitedCards, err))
			} else {
				state.VisitedCards = visited
			}
		}
	}

	if readErr[0] == nil && readErr[1] == nil {
		state.IsAuthenticated = false
		state.User = nil
		if present[0] && present[1] {
			user, err := s.restoreUser(values[0], values[1])
			if err != nil {
				errs = append(errs, err)
			} else {
				state.IsAuthenticated = true
				state.User = user
			}
		}
	}

	return state, errors.Join(errs...)
}

// restoreUser decodes the persisted profile and merges the token's email claim.
func (s *Store) restoreUser(rawToken, rawUser string) (*UserProfile, error) {
	var user UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, KeyUser, err)
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, err
	}

	user.Email = claims.Email()
	return &user, nil
}

// get reads key, mapping kvstore.ErrNotFound to a false presence flag.
func (s *Store) get(ctx context.Context, op, key string) (string, bool, error) {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", false, nil
		}
		return "", false, &PersistenceError{Op: op, Key: key, Err: err}
	}

	// An empty value counts as absent.
	return value, value != "", nil
}

// prepend returns [c, cards...] truncated to limit entries.
func prepend(cards []card.Card, c card.Card, limit int) []card.Card {
	n := min(len(cards)+1, limit)

	out := make([]card.Card, 0, n)
	out = append(out, c)
	out = append(out, cards[:n-1]...)
	return out
}

func (st State) clone() State {
	out := State{IsAuthenticated: st.IsAuthenticated}

	if st.User != nil {
		user := st.User.Clone()
		out.User = &user
	}

	if st.VisitedCards != nil {
		out.VisitedCards = make([]card.Card, len(st.VisitedCards))
		copy(out.VisitedCards, st.VisitedCards)
	}

	return out
}
