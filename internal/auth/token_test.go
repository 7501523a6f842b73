package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret    = []byte("0123456789abcdef0123456789abcdef")
	testPasetoKey = []byte("abcdefghijklmnopqrstuvwxyz012345")
)

func tokenServices(t *testing.T) map[string]TokenService {
	t.Helper()

	jwtSvc, err := NewTokenService("jwt", testSecret, nil)
	require.NoError(t, err)
	pasetoSvc, err := NewTokenService("paseto", nil, testPasetoKey)
	require.NoError(t, err)

	return map[string]TokenService{"jwt": jwtSvc, "paseto": pasetoSvc}
}

func TestTokenRoundTrip(t *testing.T) {
	for name, svc := range tokenServices(t) {
		t.Run(name, func(t *testing.T) {
			userID := uuid.New()

			token, err := svc.CreateToken(userID, "ana@x.com", 24*time.Hour)
			require.NoError(t, err)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, userID.String(), claims.UserID)
			assert.Equal(t, "ana@x.com", claims.Email)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	for name, svc := range tokenServices(t) {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New(), "ana@x.com", time.Hour)
			require.NoError(t, err)

			mid := len(token) / 2
			replacement := "A"
			if token[mid] == 'A' {
				replacement = "B"
			}
			tampered := token[:mid] + replacement + token[mid+1:]

			_, err = svc.VerifyToken(tampered)
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("garbage")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	jwtSvc, err := NewJWTService(testSecret)
	require.NoError(t, err)
	pasetoSvc, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)

	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	jwtSvc.now = past
	pasetoSvc.now = past

	for name, svc := range map[string]TokenService{"jwt": jwtSvc, "paseto": pasetoSvc} {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New(), "ana@x.com", time.Hour)
			require.NoError(t, err)

			jwtSvc.now = time.Now
			pasetoSvc.now = time.Now
			defer func() {
				jwtSvc.now = past
				pasetoSvc.now = past
			}()

			_, err = svc.VerifyToken(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	services := tokenServices(t)

	token, err := services["paseto"].CreateToken(uuid.New(), "ana@x.com", time.Hour)
	require.NoError(t, err)
	_, err = services["jwt"].VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewJWTService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	token, err = other.CreateToken(uuid.New(), "ana@x.com", time.Hour)
	require.NoError(t, err)
	_, err = services["jwt"].VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Errors(t *testing.T) {
	_, err := NewTokenService("jwt", nil, nil)
	assert.Error(t, err)

	_, err = NewTokenService("paseto", nil, []byte("short"))
	assert.Error(t, err)

	_, err = NewTokenService("opaque", testSecret, testPasetoKey)
	assert.Error(t, err)
}
