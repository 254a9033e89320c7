package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/blog-service/internal/domain"
)

func signToken(t *testing.T, secret []byte, user tokenUser, iat, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	return signed
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret")
	identity := domain.Identity{ID: 42, Username: "alice", Email: "alice@x.com"}

	tok, exp, err := tm.Issue(identity)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if remaining := time.Until(exp); remaining < TokenTTL-time.Minute || remaining > TokenTTL {
		t.Fatalf("expiry not TokenTTL from now: %v", remaining)
	}

	got, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if *got != identity {
		t.Fatalf("identity mismatch: got %+v want %+v", *got, identity)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tm := NewTokenManager(string(secret))
	now := time.Now()
	tok := signToken(t, secret, tokenUser{ID: 1, Username: "u1"}, now.Add(-2*time.Hour), now.Add(-time.Hour))

	_, err := tm.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok := signToken(t, []byte("right-secret"), tokenUser{ID: 2}, now, now.Add(time.Hour))

	_, err := NewTokenManager("wrong-secret").Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("k").Verify("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsUnexpectedSigningMethod(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		User: tokenUser{ID: 3},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	_, err = NewTokenManager("secret").Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}
