package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)

	token, err := tokens.Issue("u-1")
	require.NoError(t, err)

	subject, err := tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", subject)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", time.Hour).Issue("u-1")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	tokens := NewTokenManager("secret", -time.Minute)

	token, err := tokens.Issue("u-1")
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Validate("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
