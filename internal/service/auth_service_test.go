package service

import (
	"context"
	"testing"
	"time"

	"grievanceportal/internal/model"
	"grievanceportal/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*AuthService, *testutil.MockUserRepo) {
	t.Helper()
	users := testutil.NewMockUserRepo()
	return NewAuthService(users, "test-secret", 24*time.Hour, nil), users
}

func TestSignup(t *testing.T) {
	svc, users := newAuth(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, &model.SignupRequest{
		Name:     "Asha Verma",
		Email:    " Asha@Example.in ",
		Password: "s3cret-pass",
		UserType: "staff",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "asha@example.in", resp.User.Email)
	assert.Equal(t, "staff", resp.User.UserType)

	stored := users.Users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$2a$10$")

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSignup_Errors(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &model.SignupRequest{Email: "a@b.in"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(ctx, &model.SignupRequest{Email: "a@b.in", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, &model.SignupRequest{Email: "A@B.in", Password: "pw2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignup_DefaultUserType(t *testing.T) {
	svc, _ := newAuth(t)
	resp, err := svc.Signup(context.Background(), &model.SignupRequest{Email: "c@d.in", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserType, resp.User.UserType)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, &model.SignupRequest{Email: "staff@jal.in", Password: "pw-123", UserType: "staff"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "staff@jal.in", Password: "pw-123", UserType: "staff"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	resp, err = svc.Login(ctx, &model.LoginRequest{Email: "STAFF@jal.in", Password: "pw-123"})
	require.NoError(t, err)
	assert.Equal(t, "staff", resp.User.UserType)

	tests := []struct {
		name string
		req  model.LoginRequest
	}{
		{"wrong password", model.LoginRequest{Email: "staff@jal.in", Password: "nope", UserType: "staff"}},
		{"unknown user", model.LoginRequest{Email: "ghost@jal.in", Password: "pw-123"}},
		{"wrong user type", model.LoginRequest{Email: "staff@jal.in", Password: "pw-123", UserType: "citizen"}},
		{"empty password", model.LoginRequest{Email: "staff@jal.in"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestMe(t *testing.T) {
	svc, users := newAuth(t)
	ctx := context.Background()
	resp, err := svc.Signup(ctx, &model.SignupRequest{Name: "Ravi", Email: "ravi@el.in", Password: "pw"})
	require.NoError(t, err)

	u, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.Name)

	delete(users.Users, resp.User.ID)
	_, err = svc.Me(ctx, resp.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc, _ := newAuth(t)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(testutil.NewMockUserRepo(), "other-secret", time.Hour, nil)
	foreign, err := other.GenerateToken("u1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := svc.GenerateToken("u1")
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// HS384 with the right secret is still refused.
	claims := &model.UserClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(hs384)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
