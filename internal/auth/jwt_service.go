package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultAccessTokenExpiry is the access token lifetime used when none is configured.
const DefaultAccessTokenExpiry = 15 * time.Minute

// Claims represents JWT claims. The subject is the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Status is the outcome of verifying a bearer token.
type Status int

const (
	StatusValid Status = iota
	StatusInvalidSignature
	StatusMalformed
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalidSignature:
		return "invalid signature"
	case StatusMalformed:
		return "malformed"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Verification is the tagged result of Verify. Subject and TokenID are
// only meaningful when Status is StatusValid.
type Verification struct {
	Status  Status
	Subject string
	TokenID string
	Err     error
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret. A ttl of
// zero issues tokens without an exp claim.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken signs an HS256 access token for username.
func (s *JWTService) GenerateAccessToken(username string) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and registered claims of tokenString.
func (s *JWTService) Verify(tokenString string) Verification {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	switch {
	case err == nil && token.Valid:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Verification{Status: StatusMalformed, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return Verification{Status: StatusExpired, Err: err}
	default:
		// bad signature, wrong algorithm or any other unverifiable token
		return Verification{Status: StatusInvalidSignature, Err: err}
	}

	if claims.Subject == "" {
		return Verification{Status: StatusMalformed, Err: errors.New("token has no subject")}
	}
	return Verification{Status: StatusValid, Subject: claims.Subject, TokenID: claims.ID}
}
