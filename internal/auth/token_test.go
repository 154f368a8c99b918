package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/field-report-service/internal/domain"
)

func testCodec() *TokenCodec {
	return NewTokenCodec("test-secret", 168*time.Hour)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := testCodec()
	session := codec.NewSession("9b1e0a6e-0001-4a0f-8c55-1f1a2b3c4d5e", "a@x.com", domain.RoleAdmin)

	token, err := codec.Sign(session)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if *got != session {
		t.Fatalf("round trip mismatch: got %+v want %+v", *got, session)
	}
}

func TestVerifyRejectsFlippedSignatureBytes(t *testing.T) {
	codec := testCodec()
	session := codec.NewSession("uuid-1", "a@x.com", domain.RoleUser)
	token, err := codec.Sign(session)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	dot := strings.Index(token, ".")
	for i := dot + 1; i < len(token); i++ {
		flipped := []byte(token)
		flipped[i] ^= 0x01
		if _, err := codec.Verify(string(flipped)); err != ErrInvalidSignature {
			t.Fatalf("byte %d: got %v, want ErrInvalidSignature", i, err)
		}
	}
}

func TestVerifyRejectsExpiredSession(t *testing.T) {
	codec := testCodec()
	session := domain.Session{
		SubjectID: "uuid-1",
		Email:     "a@x.com",
		Role:      domain.RoleUser,
		ExpiresAt: time.Now().Add(-time.Minute).UnixMilli(),
	}
	// signature is valid; only the expiry is in the past
	token, err := codec.Sign(session)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := codec.Verify(token); err != ErrExpired {
		t.Fatalf("got %v, want ErrExpired", err)
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	codec := testCodec()
	cases := []string{
		"",
		"justonepart",
		"a.b.c",
	}
	for _, token := range cases {
		if _, err := codec.Verify(token); err != ErrMalformedToken {
			t.Fatalf("token %q: got %v, want ErrMalformedToken", token, err)
		}
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	codec := testCodec()
	session := codec.NewSession("uuid-1", "a@x.com", domain.RoleUser)
	token, err := codec.Sign(session)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// altering the payload segment invalidates the mac before it is parsed
	tampered := "x" + token
	if _, err := codec.Verify(tampered); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsIncompletePayload(t *testing.T) {
	codec := testCodec()
	cases := []domain.Session{
		{Email: "a@x.com", Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour).UnixMilli()},
		{SubjectID: "uuid-1", Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour).UnixMilli()},
		{SubjectID: "uuid-1", Email: "a@x.com", Role: domain.RoleUser},
		{SubjectID: "uuid-1", Email: "a@x.com", Role: "root", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()},
	}
	for i, session := range cases {
		token, err := codec.Sign(session)
		if err != nil {
			t.Fatalf("case %d Sign: %v", i, err)
		}
		if _, err := codec.Verify(token); err != ErrMalformedPayload {
			t.Fatalf("case %d: got %v, want ErrMalformedPayload", i, err)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	codec := testCodec()
	other := NewTokenCodec("other-secret", 168*time.Hour)

	token, err := codec.Sign(codec.NewSession("uuid-1", "a@x.com", domain.RoleAdmin))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := other.Verify(token); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}
