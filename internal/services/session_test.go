package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/pkg/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	id := uuid.New()

	token, err := svc.Issue(id, "alice@example.com", models.RoleEscort)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Escort", claims.Role)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue(uuid.New(), "a@b.com", models.RoleClient)
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := NewTokenService("secret", -time.Minute).Issue(uuid.New(), "a@b.com", models.RoleClient)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestVerifyRejectsEmptyAndGarbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	_, err := svc.Verify("")
	require.Error(t, err)

	_, err = svc.Verify("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
