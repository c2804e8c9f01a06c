package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	repos := repomanager.NewMemoryRepositoryManager()

	hash, err := passwords.Hash(cheapParams, "pw")
	require.NoError(t, err)
	created, err := repos.Subjects().Create(ctx, &models.Subject{
		Email: "alice@example.com", PasswordHash: hash, Provider: models.ProviderLocal,
	})
	require.NoError(t, err)

	a := NewPasswordAuthenticator(repos, cheapParams)

	got, err := a.Authenticate(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = a.Authenticate(ctx, "alice@example.com", "PW")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestPasswordAuthenticator_StoreFailure(t *testing.T) {
	repos := newFakeRepoManager()
	repos.s.getErr = errBoom

	_, err := NewPasswordAuthenticator(repos, cheapParams).Authenticate(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}
