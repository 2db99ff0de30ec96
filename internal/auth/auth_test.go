package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/calcmaster/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st.UserRepo(), st.SessionRepo(), Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, nil)
}

func register(t *testing.T, s *Service, username string) *store.User {
	t.Helper()
	u, err := s.Register(context.Background(), Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)
	tests := []struct {
		name  string
		in    Registration
		field string
	}{
		{"short username", Registration{Username: "ab", Email: "a@b.co", Password: "secret1"}, "username"},
		{"blank username", Registration{Username: "   ", Email: "a@b.co", Password: "secret1"}, "username"},
		{"bad email", Registration{Username: "ada", Email: "nope", Password: "secret1"}, "email"},
		{"short password", Registration{Username: "ada", Email: "a@b.co", Password: "12345"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.in)
			var ie *InputError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	s := newTestService(t)
	u := register(t, s, "ada")
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	assert.Equal(t, "ada", u.DisplayName)
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestService(t)
	register(t, s, "ada")
	_, err := s.Register(context.Background(), Registration{Username: "ada", Email: "x@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "ada")

	sess, err := s.Login(ctx, Credentials{Username: " ada ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, u.ID, sess.User.ID)

	got, err := s.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	require.NoError(t, s.Logout(ctx, sess.Token))
	_, err = s.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestService(t)
	register(t, s, "ada")

	_, err := s.Login(context.Background(), Credentials{Username: "ada", Password: "wrong-one"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(context.Background(), Credentials{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionExpires(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	register(t, s, "ada")

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	sess, err := s.Login(ctx, Credentials{Username: "ada", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateEmptyToken(t *testing.T) {
	s := newTestService(t)
	_, err := s.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NoError(t, s.Logout(context.Background(), ""))
}
