package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	sub, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = m.GenerateToken("")
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	good, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken("user-1")
	require.NoError(t, err)

	otherKey, err := NewManager("other-secret", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "iss": issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not-a-token",
		"expired":   old,
		"wrong key": otherKey,
		"alg none":  none,
		"truncated": good[:len(good)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
