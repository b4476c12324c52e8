package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegisterUserCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewAccountService(store, zaptest.NewLogger(t))

	user, err := svc.RegisterUser(ctx, 42, "ivan", "Иван", "", "ru")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.Balance.IsZero())

	again, err := svc.RegisterUser(ctx, 42, "ivan_p", "Иван", "Петров", "ru")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	found, err := svc.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "ivan_p", found.Username)
	assert.Equal(t, "Петров", found.LastName)

	missing, err := svc.GetByTelegramID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
