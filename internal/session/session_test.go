package session

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := "s3cr3t"
	payload := "user-123|1700000000"

	signed := Sign(secret, payload)
	got, ok := Verify(secret, signed)
	if !ok {
		t.Fatalf("expected verify ok")
	}
	if got != payload {
		t.Fatalf("expected payload %q, got %q", payload, got)
	}
	if strings.ContainsAny(signed, "+/= ") {
		t.Fatalf("expected cookie-safe value, got %q", signed)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	secret := "secret"
	signed := Sign(secret, "abc")

	last := signed[len(signed)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	tampered := signed[:len(signed)-1] + string(replacement)

	if _, ok := Verify(secret, tampered); ok {
		t.Fatalf("expected tampered signature to fail")
	}
	if _, ok := Verify("other-secret", signed); ok {
		t.Fatalf("expected wrong secret to fail")
	}
}

func TestVerifyRejectsInvalidFormat(t *testing.T) {
	secret := "secret"

	cases := []string{
		"",        // empty
		"no-dot",  // missing dot
		"abc.def", // non-hex signature
		"YWJj." + hex.EncodeToString([]byte("short")), // wrong length
	}

	for _, tc := range cases {
		if _, ok := Verify(secret, tc); ok {
			t.Fatalf("expected verify to fail for %q", tc)
		}
	}
}

func TestIssueParse(t *testing.T) {
	secret := "secret"
	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	value := Issue(secret, "user-1", issued)

	tests := []struct {
		name   string
		value  string
		now    time.Time
		wantOK bool
	}{
		{name: "fresh", value: value, now: issued.Add(time.Hour), wantOK: true},
		{name: "expired", value: value, now: issued.Add(25 * time.Hour)},
		{name: "issued in the future", value: value, now: issued.Add(-time.Hour)},
		{name: "no timestamp", value: Sign(secret, "user-1")},
		{name: "bad timestamp", value: Sign(secret, "user-1|soon"), now: issued},
		{name: "empty user", value: Sign(secret, "|1748772000"), now: issued},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uid, ok := Parse(secret, tc.value, 24*time.Hour, tc.now)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v (uid %q)", tc.wantOK, ok, uid)
			}
			if ok && uid != "user-1" {
				t.Fatalf("expected user-1, got %q", uid)
			}
		})
	}
}

func TestSetCookieHeader(t *testing.T) {
	h := SetCookieHeader("v", CookieOptions{Secure: true, MaxAge: 2 * time.Hour})
	for _, want := range []string{CookieName + "=v", "HttpOnly", "SameSite=Lax", "Max-Age=7200", "Secure"} {
		if !strings.Contains(h, want) {
			t.Fatalf("expected %q in %q", want, h)
		}
	}
	if h := SetCookieHeader("v", CookieOptions{}); !strings.Contains(h, "Max-Age=86400") || strings.Contains(h, "Secure") {
		t.Fatalf("unexpected default header %q", h)
	}
}
