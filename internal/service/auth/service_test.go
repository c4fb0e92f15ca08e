package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/service/auth"
	"github.com/oggyb/swipematch/internal/testutil"
)

func validInput() auth.UserInput {
	return auth.UserInput{
		FirstName:         "Maria",
		LastName:          "Santos",
		Email:             "Maria@Example.com ",
		MobileNumber:      "09171234567",
		Password:          "s3cret-pass",
		Birthdate:         testutil.Birthdate(1996, time.March, 2),
		Gender:            "female",
		SexualOrientation: "straight",
		GenderInterest:    "male",
		Bio:               "coffee and hiking",
	}
}

func setup(t *testing.T) (*auth.Service, *app.AppContext) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	return auth.NewService(appCtx), appCtx
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	in := validInput()
	in.Role = "admin"
	u, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEqual(t, in.Password, u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, in.Password))

	_, err = svc.Register(ctx, validInput())
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := setup(t)

	in := validInput()
	in.Bio = " "
	in.Birthdate = time.Time{}
	_, err := svc.Register(context.Background(), in)
	require.ErrorIs(t, err, svcErr.ErrInvalidOperation)
	assert.Equal(t, "invalid input: missing bio, birthdate", svcErr.MessageOf(err))

	in = validInput()
	in.Email = "not-an-email"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func TestCreateUser_KeepsRole(t *testing.T) {
	svc, _ := setup(t)

	in := validInput()
	in.Role = "admin"
	u, err := svc.CreateUser(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "maria@example.com", "wrong")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	sess, err := svc.Login(ctx, " MARIA@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, u.ID, sess.User.ID)

	got, err := svc.Authenticate(ctx, "Bearer "+sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setup(t)
	u := testutil.CreateUser(t, appCtx.DB, db.User{})

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	// signed with another secret
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:           u.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	// expired
	appCtx.Config.JWT.TTL = -time.Minute
	expired, err := svc.IssueToken(u.ID)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	// user no longer exists
	appCtx.Config.JWT.TTL = time.Hour
	orphan, err := svc.IssueToken(u.ID + 1000)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
}

func TestEmptySecret_RefusesTokens(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setup(t)
	u := testutil.CreateUser(t, appCtx.DB, db.User{Role: auth.RoleAdmin})

	valid, err := svc.IssueToken(u.ID)
	require.NoError(t, err)

	appCtx.Config.JWT.Secret = ""

	_, err = svc.IssueToken(u.ID)
	assert.Error(t, err)

	_, err = svc.Authenticate(ctx, "Bearer "+valid)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	// a token signed with a guessable key is still nobody
	guess := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:           u.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := guess.SignedString([]byte("change-me"))
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
}
