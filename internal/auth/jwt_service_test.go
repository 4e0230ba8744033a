package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", DefaultAccessTokenExpiry)

	token, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	v := svc.Verify(token)
	assert.Equal(t, StatusValid, v.Status)
	assert.Equal(t, "alice", v.Subject)
	assert.NotEmpty(t, v.TokenID)
	assert.NoError(t, v.Err)
}

func TestJWTService_NoExpiryWhenTTLZero(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	svc.now = func() time.Time { return time.Now().Add(-365 * 24 * time.Hour) }

	token, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	require.NoError(t, err)
	assert.Nil(t, parsed.Claims.(*Claims).ExpiresAt)
	assert.Equal(t, StatusValid, svc.Verify(token).Status)
}

func TestJWTService_Verify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	good, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	other := NewJWTService("other-secret", time.Minute)
	forged, err := other.GenerateAccessToken("alice")
	require.NoError(t, err)

	stale := NewJWTService("test-secret", time.Minute)
	stale.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := stale.GenerateAccessToken("alice")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name   string
		token  string
		status Status
	}{
		{"valid", good, StatusValid},
		{"signed with another key", forged, StatusInvalidSignature},
		{"tampered signature", tampered, StatusInvalidSignature},
		{"alg none", unsigned, StatusInvalidSignature},
		{"expired", expired, StatusExpired},
		{"garbage", "not-a-token", StatusMalformed},
		{"empty", "", StatusMalformed},
		{"missing subject", noSubject, StatusMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := svc.Verify(tt.token)
			assert.Equal(t, tt.status, v.Status, "err: %v", v.Err)
			if tt.status != StatusValid {
				assert.Empty(t, v.Subject)
				assert.Error(t, v.Err)
			}
		})
	}
}
