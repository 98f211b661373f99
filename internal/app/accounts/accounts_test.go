package accounts

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/testutil"
)

func TestCreateAndAuthenticate(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewService(store, 3, zap.NewNop())
	ctx := context.Background()

	account, err := svc.Create(ctx, " anna ", "anna@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "anna", account.Username)
	assert.Equal(t, 3, account.CreditBalance)
	assert.NotEqual(t, "s3cret-pass", account.PasswordHash)

	got, err := svc.Authenticate(ctx, "anna", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = svc.Authenticate(ctx, "anna", "wrong-pass")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	byName, err := svc.Lookup(ctx, "anna")
	require.NoError(t, err)
	byID, err := svc.Lookup(ctx, strconv.FormatInt(account.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byID.ID)
}

func TestCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewService(store, 3, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "marek", "marek@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "marek", "other@example.com", "password1")
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))

	testCases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "  ", "a@example.com", "password1"},
		{"bad email", "bob", "not-an-email", "password1"},
		{"short password", "bob", "bob@example.com", "123"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.username, tc.email, tc.password)
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("test-secret-value", 42, time.Hour)
	require.NoError(t, err)

	id, err := ParseToken("test-secret-value", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseToken("another-secret", token)
	assert.Error(t, err)

	expired, err := IssueToken("test-secret-value", 42, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("test-secret-value", expired)
	assert.Error(t, err)

	_, err = IssueToken("", 42, time.Hour)
	assert.Error(t, err)
}
