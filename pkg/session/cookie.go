package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// CookieCodec signs session IDs so a browser cannot pick another session's ID.
// Encoded values look like "<id>.<base64url(HMAC-SHA256(secret, id))>".
type CookieCodec struct {
	secret []byte
}

// NewCookieCodec returns a codec keyed with secret.
func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

// Encode returns the signed cookie value for id.
func (c *CookieCodec) Encode(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(c.sign(id))
}

// Decode verifies value and returns the session ID it carries.
func (c *CookieCodec) Decode(value string) (string, bool) {
	dot := strings.LastIndexByte(value, '.')
	if dot <= 0 || dot == len(value)-1 {
		return "", false
	}
	id := value[:dot]
	sig, err := base64.RawURLEncoding.DecodeString(value[dot+1:])
	if err != nil {
		return "", false
	}
	if !hmac.Equal(sig, c.sign(id)) {
		return "", false
	}
	return id, true
}

func (c *CookieCodec) sign(id string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return mac.Sum(nil)
}
