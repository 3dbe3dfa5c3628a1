// Package token decodes bearer tokens issued by the vault API.
//
// Decoding reads the claims payload without verifying the signature.
// The result is for display only (showing the user's email without a
// round trip); signature checks and authorization decisions belong to
// the server and must never be derived from these claims.
package token

import "time"

// Codec decodes a raw bearer token into its claims.
type Codec interface {
	// Decode parses raw and returns its claims.
	//
	// Returns a *DecodeError if raw cannot be parsed into a claims payload.
	// A well-formed token without an email claim is not an error.
	Decode(raw string) (Claims, error)
}

// Claims is the decoded payload of a bearer token.
type Claims map[string]interface{}

// Email returns the email claim, or "" when absent or not a string.
func (c Claims) Email() string {
	email, _ := c["email"].(string)
	return email
}

// Subject returns the sub claim, or "" when absent.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// ExpiresAt returns the exp claim and whether it was present.
func (c Claims) ExpiresAt() (time.Time, bool) {
	switch exp := c["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case int64:
		return time.Unix(exp, 0), true
	default:
		return time.Time{}, false
	}
}
