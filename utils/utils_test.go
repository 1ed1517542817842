package utils

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, "pw123456", hash)

	require.NoError(t, CheckPassword(hash, "pw123456"))
	require.Error(t, CheckPassword(hash, "wrong-password"))
}

func TestGenerateActivationCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := GenerateActivationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1000)
		require.LessOrEqual(t, n, 9999)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "foo@bar.com", NormalizeEmail("  Foo@BAR.com "))
	require.Equal(t, "a@x.com", NormalizeEmail("a@x.com"))
}

func TestTTLDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "")
	t.Setenv("ACTIVATION_TOKEN_TTL_MINUTES", "")

	require.Equal(t, 5*time.Minute, AccessTTL())
	require.Equal(t, 3*24*time.Hour, RefreshTTL())
	require.Equal(t, time.Hour, ActivationTTL())

	// Access validity must stay strictly shorter than refresh validity.
	require.Less(t, AccessTTL(), RefreshTTL())
}

func TestTTLFromEnv(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("ACTIVATION_TOKEN_TTL_MINUTES", "30")

	require.Equal(t, 15*time.Minute, AccessTTL())
	require.Equal(t, 7*24*time.Hour, RefreshTTL())
	require.Equal(t, 30*time.Minute, ActivationTTL())
}
