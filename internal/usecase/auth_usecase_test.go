package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/service/token"
)

func newAuthFixture() (*AuthUseCase, *AuditQueryService) {
	store := newIndexedStore()
	log := testLogger()
	tokens := token.NewJWTService("test-secret", time.Hour)
	return NewAuthUseCase(store, tokens, NewAuditRecorder(store, log), log),
		NewAuditQueryService(store, log)
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, audit := newAuthFixture()

	user, err := auth.CreateUser(ctx, testActor, CreateUserRequest{
		Email:       "dispenser@cultivo.local",
		Password:    "correct horse",
		DisplayName: "Demo Dispenser",
		Role:        domain.UserRoleDispenser,
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.True(t, user.Active)

	resp, err := auth.Login(ctx, "dispenser@cultivo.local", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	// Creation is audited and the snapshot never carries the password hash.
	entries, err := audit.ByEntity(ctx, domain.EntityTypeUser, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)
	assert.NotContains(t, entries[0].NewValue, "passwordHash")
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	_, err := auth.CreateUser(ctx, testActor, CreateUserRequest{
		Email:    "dispenser@cultivo.local",
		Password: "correct horse",
		Role:     domain.UserRoleDispenser,
	})
	require.NoError(t, err)

	_, err = auth.Login(ctx, "dispenser@cultivo.local", "wrong horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@cultivo.local", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	req := CreateUserRequest{Email: "dup@cultivo.local", Password: "long enough", Role: domain.UserRoleAdmin}
	_, err := auth.CreateUser(ctx, testActor, req)
	require.NoError(t, err)

	_, err = auth.CreateUser(ctx, testActor, req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateUserWeakPassword(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	_, err := auth.CreateUser(ctx, testActor, CreateUserRequest{Email: "a@b.c", Password: "short"})
	assert.Error(t, err)
}
