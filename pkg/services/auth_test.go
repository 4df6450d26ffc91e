package services

import (
	"context"
	"testing"
	"time"

	"LenaAI/models"
	tokenstore "LenaAI/pkg/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *tokenstore.Store) {
	t.Helper()
	revoked := tokenstore.New(100)
	t.Cleanup(revoked.Close)
	return NewAuthService(newTestStore(t), "test-secret", time.Hour, revoked, zerolog.Nop()), revoked
}

func TestRegisterTwiceYieldsUserExists(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "bob", "pa55word"))
	assert.ErrorIs(t, auth.Register(ctx, "bob", "other1pass"), ErrUserExists)
}

func TestRegisterStoresDigestOnly(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, " bob ", "pa55word"))
	u, err := auth.users.FindUserByExternalID(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "pa55word", *u.PasswordHash)
	assert.True(t, u.CheckPassword("pa55word"))
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	assert.ErrorIs(t, auth.Register(ctx, "", "pa55word"), ErrInvalidInput)
	assert.ErrorIs(t, auth.Register(ctx, "bob", ""), ErrInvalidInput)
	assert.ErrorIs(t, auth.Register(ctx, "bob", "password"), ErrWeakPassword)
}

func TestRegisterClashesWithImplicitUser(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, auth.users.CreateUser(ctx, &models.User{ExternalID: "alice"}))

	assert.ErrorIs(t, auth.Register(ctx, "alice", "pa55word"), ErrUserExists)
	_, err := auth.Login(ctx, "alice", "anything1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "users without a digest cannot log in")
}

func TestLoginIssuesTokenWithSubject(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, auth.Register(ctx, "bob", "pa55word"))

	token, err := auth.Login(ctx, "bob", "pa55word")
	require.NoError(t, err)

	sub, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob", sub)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, auth.Register(ctx, "bob", "pa55word"))

	_, err := auth.Login(ctx, "bob", "wrong1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "pa55word")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejections(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	sign := func(method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{Subject: "bob", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	cases := map[string]string{
		"missing":         "",
		"malformed":       "not.a.jwt",
		"wrong secret":    sign(jwt.SigningMethodHS256, []byte("other"), valid),
		"wrong algorithm": sign(jwt.SigningMethodHS512, []byte("test-secret"), valid),
		"expired":         sign(jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{Subject: "bob", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}),
		"no expiry":       sign(jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{Subject: "bob"}),
		"no subject":      sign(jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{ExpiresAt: valid.ExpiresAt}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(ctx, token)
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, revoked := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, auth.Register(ctx, "bob", "pa55word"))

	token, err := auth.Login(ctx, "bob", "pa55word")
	require.NoError(t, err)
	other, err := auth.Login(ctx, "bob", "pa55word")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, 1, revokedCount(revoked))

	sub, err := auth.Authenticate(ctx, other)
	require.NoError(t, err, "other sessions stay valid")
	assert.Equal(t, "bob", sub)

	assert.ErrorIs(t, auth.Logout(ctx, token), ErrAuth)
}

func revokedCount(s *tokenstore.Store) int {
	return s.Len()
}
