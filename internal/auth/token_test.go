package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := IssueToken(secret, "ops-42", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "ops-42", claims.UserID())
	assert.Equal(t, "JWT", claims.Source())
	assert.NotEmpty(t, claims.TokenID)
}

func TestParseToken_Rejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, err := IssueToken(secret, "ops-42", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := IssueToken([]byte("other-secret"), "ops-42", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(secret, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(secret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := IssueToken(secret, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(secret, noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserClaimsContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUserClaims(ctx))

	ctx = SetUserClaims(ctx, &CLIClaims{UserName: "ops"})
	claims := GetUserClaims(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "ops", claims.UserID())
	assert.Equal(t, "CLI", claims.Source())
}
