package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const CookieName = "causaltrace_session"

// Sign produces a signed cookie value for the given payload.
// Format: base64url(payload) + "." + hex(HMAC-SHA256(secret, payload)).
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	sig := hex.EncodeToString(mac.Sum(nil))
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + sig
}

// Verify checks the signed cookie and returns the payload if valid.
func Verify(secret, signed string) (payload string, ok bool) {
	idx := strings.LastIndex(signed, ".")
	if idx == -1 {
		return "", false
	}
	encoded, sigHex := signed[:idx], signed[idx+1:]
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != sha256.Size {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	payload = string(raw)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", false
	}
	return payload, true
}

// Issue signs a session for userID issued at now. Payload: "<user id>|<unix seconds>".
func Issue(secret, userID string, now time.Time) string {
	return Sign(secret, userID+"|"+strconv.FormatInt(now.Unix(), 10))
}

// Parse verifies a session value and returns its user id. Sessions older than
// ttl, or issued in the future, are rejected.
func Parse(secret, signed string, ttl time.Duration, now time.Time) (userID string, ok bool) {
	payload, ok := Verify(secret, signed)
	if !ok {
		return "", false
	}
	idx := strings.LastIndex(payload, "|")
	if idx <= 0 {
		return "", false
	}
	issued, err := strconv.ParseInt(payload[idx+1:], 10, 64)
	if err != nil {
		return "", false
	}
	age := now.Sub(time.Unix(issued, 0))
	if age < -time.Minute || (ttl > 0 && age > ttl) {
		return "", false
	}
	return payload[:idx], true
}

// CookieOptions holds options for setting the session cookie.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetCookieHeader returns a Set-Cookie header value for the given signed value.
func SetCookieHeader(signedValue string, opts CookieOptions) string {
	secure := ""
	if opts.Secure {
		secure = "; Secure"
	}
	maxAge := int(opts.MaxAge / time.Second)
	if maxAge <= 0 {
		maxAge = 86400
	}
	return fmt.Sprintf("%s=%s; Path=/; HttpOnly; SameSite=Lax; Max-Age=%d%s",
		CookieName, signedValue, maxAge, secure)
}
