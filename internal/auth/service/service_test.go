package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
	"github.com/smallbiznis/teamroster/internal/auth/password"
	"github.com/smallbiznis/teamroster/internal/auth/repository"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (authdomain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(zaptest.NewLogger(t), repository.New(dbConn), node, fake), dbConn
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, conn, authdomain.CreateUserRequest{
		Email:    "  Alice@Example.com ",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.DisplayName)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, password.Verify("correct-password", *user.PasswordHash))

	found, err := svc.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, conn, authdomain.CreateUserRequest{Email: "bob@example.com", Password: "strong-password"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, conn, authdomain.CreateUserRequest{Email: "BOB@example.com", Password: "strong-password"})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestCreateUserValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, conn, authdomain.CreateUserRequest{Email: "not-an-email", Password: "strong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, conn, authdomain.CreateUserRequest{Email: "carol@example.com", Password: "short"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidPassword)
}

func TestCreateUserRollsBackWithTransaction(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.CreateUser(ctx, tx, authdomain.CreateUserRequest{Email: "dave@example.com", Password: "strong-password"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	_, err = svc.FindByEmail(ctx, "dave@example.com")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "a@b.co", want: "a@b.co"},
		{in: " X@Y.Org ", want: "x@y.org"},
		{in: "", err: true},
		{in: "Alice <alice@example.com>", err: true},
		{in: "missing-at.example.com", err: true},
	}
	for _, tc := range cases {
		got, err := authdomain.NormalizeEmail(tc.in)
		if tc.err {
			assert.ErrorIs(t, err, authdomain.ErrInvalidEmail, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
