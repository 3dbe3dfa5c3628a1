package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// UserProfile is the signed-in user.
//
// Username is supplied by the caller and Email is taken from the token's
// email claim. Any other fields the caller supplies travel in Extra and
// are persisted verbatim.
type UserProfile struct {
	Username string
	Email    string
	Extra    map[string]interface{}
}

// MarshalJSON writes Extra, username and email as one flat object.
// Email is omitted when empty.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+2)
	maps.Copy(out, p.Extra)

	out["username"] = p.Username
	if p.Email != "" {
		out["email"] = p.Email
	} else {
		delete(out, "email")
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object; unknown fields land in Extra.
// Numbers are kept as json.Number so they re-encode unchanged.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("user profile must be an object")
	}

	*p = UserProfile{}

	if v, ok := fields["username"]; ok {
		username, isString := v.(string)
		if !isString {
			return fmt.Errorf("user profile: username must be a string")
		}
		p.Username = username
		delete(fields, "username")
	}

	if v, ok := fields["email"]; ok {
		// A null email is treated as absent.
		p.Email, _ = v.(string)
		delete(fields, "email")
	}

	if len(fields) > 0 {
		p.Extra = fields
	}

	return nil
}

// Clone returns a copy whose Extra map can be modified independently.
func (p UserProfile) Clone() UserProfile {
	clone := p
	if p.Extra != nil {
		clone.Extra = maps.Clone(p.Extra)
	}
	return clone
}
