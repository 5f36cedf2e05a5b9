package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIncompleteProfile is returned when the profile payload lacks name or email.
var ErrIncompleteProfile = errors.New("profile is missing name or email")

// UserProfile is the profile returned by the provider's userinfo endpoint.
// Name and Email are required; every field the provider sends, including
// ones not modelled here, is kept in Claims and written back unchanged.
type UserProfile struct {
	Name    string
	Email   string
	Subject string
	Picture string
	Claims  map[string]any
}

// UnmarshalJSON decodes a provider payload, keeping unknown fields in Claims.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var claims map[string]any
	if err := json.Unmarshal(data, &claims); err != nil {
		return err
	}
	if claims == nil {
		return fmt.Errorf("profile payload is not an object")
	}

	*p = UserProfile{
		Name:    stringClaim(claims, "name"),
		Email:   stringClaim(claims, "email"),
		Subject: stringClaim(claims, "sub"),
		Picture: stringClaim(claims, "picture"),
		Claims:  claims,
	}
	return nil
}

// MarshalJSON writes the provider payload back out verbatim.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Claims)+4)
	for k, v := range p.Claims {
		out[k] = v
	}
	setClaim(out, "name", p.Name)
	setClaim(out, "email", p.Email)
	setClaim(out, "sub", p.Subject)
	setClaim(out, "picture", p.Picture)
	return json.Marshal(out)
}

// Validate enforces the required fields.
func (p *UserProfile) Validate() error {
	if p.Name == "" || p.Email == "" {
		return ErrIncompleteProfile
	}
	return nil
}

// PrettyJSON renders the profile the way the profile page shows it.
func (p *UserProfile) PrettyJSON() string {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Clone returns a copy that shares no maps with p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Claims != nil {
		c.Claims = make(map[string]any, len(p.Claims))
		for k, v := range p.Claims {
			c.Claims[k] = v
		}
	}
	return &c
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

func setClaim(claims map[string]any, key, value string) {
	if value != "" {
		claims[key] = value
	}
}
