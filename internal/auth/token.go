package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/blog-service/internal/domain"
)

// TokenTTL is fixed at one hour from issuance. Tokens are never renewed,
// rotated, or revoked server-side; they stay valid until natural expiry.
const TokenTTL = time.Hour

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid, correctly
	// signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and verifies HS256-signed identity tokens. The secret
// is process-wide, loaded once at startup.
type TokenManager struct {
	secret []byte
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// tokenUser is the identity embedded in the claims.
type tokenUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Claims describes the JWT payload: {user: {id, username, email}, iat, exp}.
type Claims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token for the identity, expiring TokenTTL from now.
func (tm *TokenManager) Issue(identity domain.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	claims := &Claims{
		User: tokenUser{
			ID:       identity.ID,
			Username: identity.Username,
			Email:    identity.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks the signature before trusting any claim content and returns
// the embedded identity, ErrTokenExpired, or ErrInvalidToken.
func (tm *TokenManager) Verify(tokenStr string) (*domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &domain.Identity{
		ID:       claims.User.ID,
		Username: claims.User.Username,
		Email:    claims.User.Email,
	}, nil
}
