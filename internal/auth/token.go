package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// Token verification failures. Callers that write HTTP responses must collapse
// all of these into a single unauthenticated outcome; the distinction exists
// for logs and tests only.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMalformedPayload = errors.New("malformed token payload")
	ErrExpired          = errors.New("token expired")
)

// TokenCodec signs and verifies compact session tokens of the form
// base64url(JSON payload) + "." + base64url(HMAC-SHA256 mac).
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec with the process-wide signing secret.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// NewSession builds a session for the subject expiring one TTL from now.
func (tc *TokenCodec) NewSession(subjectID, email string, role domain.Role) domain.Session {
	return domain.Session{
		SubjectID: subjectID,
		Email:     email,
		Role:      role,
		ExpiresAt: time.Now().Add(tc.ttl).UnixMilli(),
	}
}

// Sign serializes the session and appends an HMAC over the encoded payload.
func (tc *TokenCodec) Sign(session domain.Session) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	data := base64.RawURLEncoding.EncodeToString(payload)
	return data + "." + tc.mac(data), nil
}

// Verify checks structure, signature and expiry, in that order, and returns
// the reconstructed session.
func (tc *TokenCodec) Verify(token string) (*domain.Session, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrMalformedToken
	}
	data, sig := parts[0], parts[1]

	expected := tc.mac(data)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return nil, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, ErrMalformedPayload
	}
	if session.SubjectID == "" || session.Email == "" || session.ExpiresAt == 0 {
		return nil, ErrMalformedPayload
	}
	if session.Role != domain.RoleAdmin && session.Role != domain.RoleUser {
		return nil, ErrMalformedPayload
	}
	if session.Expired(time.Now()) {
		return nil, ErrExpired
	}
	return &session, nil
}

func (tc *TokenCodec) mac(data string) string {
	h := hmac.New(sha256.New, tc.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
