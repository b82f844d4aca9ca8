package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proid/proid/internal/auth"
)

var testSecret = []byte("test-secret-key")

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, -time.Minute)

	token, err := issuer.Issue(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_TamperedSignature(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue(uuid.New(), "a@x.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	other := auth.NewTokenIssuer([]byte("another-secret"), time.Hour)

	token, err := issuer.Issue(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_GarbageToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
