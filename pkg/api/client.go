package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/magicvault/vault/pkg/card"
	"github.com/magicvault/vault/pkg/logger"
)

const (
	defaultBaseURL     = "http://localhost:8082"
	defaultCardBaseURL = "https://api.scryfall.com"
	defaultTimeout     = 10 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4 << 10

	headerRequestID = "X-Request-ID"
)

// client implements the Client interface.
type client struct {
	http    *http.Client
	baseURL string
	cardURL string
	token   TokenSource
	logger  logger.Logger
}

// NewClient creates a new API client.
func NewClient(cfg Config, log logger.Logger) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CardBaseURL == "" {
		cfg.CardBaseURL = defaultCardBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cardURL: strings.TrimRight(cfg.CardBaseURL, "/"),
		token:   cfg.Token,
		logger:  log.With("component", "api"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login implements Client.Login.
func (c *client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, c.backend("login"), loginRequest{username, password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}

	return resp.Token, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register implements Client.Register.
func (c *client) Register(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	return c.do(ctx, http.MethodPost, c.backend("register"), registerRequest{username, email, password}, nil)
}

// GetUser implements Client.GetUser.
func (c *client) GetUser(ctx context.Context, username string) (map[string]interface{}, error) {
	var user map[string]interface{}
	if err := c.do(ctx, http.MethodGet, c.backend("users", username), nil, &user); err != nil {
		return nil, err
	}

	return user, nil
}

// FetchExpansions implements Client.FetchExpansions.
func (c *client) FetchExpansions(ctx context.Context) ([]Option, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.backend("sets"), nil, &raw); err != nil {
		return nil, err
	}

	var body struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Data == nil {
		c.logger.Warn("unexpected sets response", "body", truncate(string(raw), 200))
		return []Option{}, nil
	}

	options := make([]Option, 0, len(body.Data))
	for _, set := range body.Data {
		options = append(options, Option{Label: set.Name, Value: set.Name})
	}

	return options, nil
}

// SearchCards implements Client.SearchCards.
func (c *client) SearchCards(ctx context.Context, name string) ([]card.Card, error) {
	endpoint := c.backend("cards", "search") + "?" + url.Values{"name": {name}}.Encode()
	return c.cardList(ctx, endpoint)
}

// CollectionCards implements Client.CollectionCards.
func (c *client) CollectionCards(ctx context.Context, username, collection string) ([]card.Card, error) {
	return c.cardList(ctx, c.backend("users", username, "collections", collection, "cards"))
}

// DeckCards implements Client.DeckCards.
func (c *client) DeckCards(ctx context.Context, username, deck string) ([]card.Card, error) {
	return c.cardList(ctx, c.backend("users", username, "decks", deck, "cards"))
}

// RemoveCardFromDeck implements Client.RemoveCardFromDeck.
func (c *client) RemoveCardFromDeck(ctx context.Context, deck, username, cardName string) error {
	return c.do(ctx, http.MethodDelete, c.backend("users", username, "decks", deck, "cards", cardName), nil, nil)
}

// RandomCommander implements Client.RandomCommander.
func (c *client) RandomCommander(ctx context.Context) (card.Card, error) {
	endpoint := c.cardURL + "/cards/random?" + url.Values{"q": {"is:commander"}}.Encode()

	var result card.Card
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return card.Card{}, err
	}

	return result, nil
}

// cardList fetches a list of cards. Both a bare array and a {"data": [...]}
// envelope are accepted.
func (c *client) cardList(ctx context.Context, endpoint string) ([]card.Card, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var envelope struct {
			Data []card.Card `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode cards: %w", err)
		}
		return envelope.Data, nil
	}

	var cards []card.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}

	return cards, nil
}

// backend joins escaped path segments onto the backend URL.
func (c *client) backend(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// do sends a JSON request and decodes a JSON response into out, if non-nil.
// The bearer token is attached to backend requests only. Every request
// carries a fresh X-Request-ID that is also logged.
func (c *client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil && strings.HasPrefix(endpoint, c.baseURL+"/") {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, endpoint, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	c.logger.Debug("api request",
		"request_id", requestID,
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty response from %s", endpoint)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error
// body, falling back to the raw text.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}

	return truncate(strings.TrimSpace(string(data)), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
