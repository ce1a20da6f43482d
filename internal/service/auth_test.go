package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/license-tracker/internal/model"
)

func TestVerifyMatchesExactCredentials(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&model.User{Username: "admin", Password: "admin"}).Error)
	svc := NewUserService(db)
	ctx := context.Background()

	ok, err := svc.Verify(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, "nobody", "admin")
	require.NoError(t, err)
	assert.False(t, ok)
}
