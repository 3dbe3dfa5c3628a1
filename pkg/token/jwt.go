package token

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// jwtCodec implements Codec for JWTs using an unverified parse.
type jwtCodec struct {
	parser *jwtlib.Parser
}

// NewJWT returns a Codec for JWT bearer tokens.
func NewJWT() Codec {
	return &jwtCodec{
		parser: jwtlib.NewParser(),
	}
}

// Decode implements Codec.Decode.
func (c *jwtCodec) Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &DecodeError{Err: ErrEmptyToken}
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := c.parser.ParseUnverified(raw, claims); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return Claims(claims), nil
}
