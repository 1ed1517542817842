package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActivationToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("activation-secret")
	pending := PendingRegistration{
		Name:     "A",
		Email:    "a@x.com",
		Password: "pw123456",
	}

	token, err := SignActivationToken(pending, "1234", secret, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyActivationToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, pending, claims.User)
	require.Equal(t, "1234", claims.ActivationCode)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("access-secret")
	token, err := SignSessionToken("user-123", secret, time.Minute)
	require.NoError(t, err)

	claims, err := VerifySessionToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := SignSessionToken("u1", []byte("right-secret"), time.Minute)
	require.NoError(t, err)

	_, err = VerifySessionToken(token, []byte("wrong-secret"))
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestSessionToken_CrossPurposeSecret(t *testing.T) {
	t.Parallel()

	// An access token must not verify against the refresh secret.
	token, err := SignSessionToken("u1", []byte("access-secret"), time.Minute)
	require.NoError(t, err)

	_, err = VerifySessionToken(token, []byte("refresh-secret"))
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestSessionToken_Tampered(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token, err := SignSessionToken("u1", secret, time.Minute)
	require.NoError(t, err)

	// Rewrite the payload segment with a different user id; the signature no
	// longer matches.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	body["id"] = "someone-else"
	forged, err := json.Marshal(body)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = VerifySessionToken(strings.Join(parts, "."), secret)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestSessionToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token, err := SignSessionToken("u1", secret, -time.Second)
	require.NoError(t, err)

	_, err = VerifySessionToken(token, secret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestActivationToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token, err := SignActivationToken(PendingRegistration{Email: "a@x.com"}, "1234", secret, -time.Second)
	require.NoError(t, err)

	_, err = VerifyActivationToken(token, secret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		_, err := VerifySessionToken(tok, []byte("k"))
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)

		_, err = VerifyActivationToken(tok, []byte("k"))
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestVerify_FailureReasonsAreDistinct(t *testing.T) {
	t.Parallel()

	require.False(t, errors.Is(ErrTokenExpired, ErrTokenSignature))
	require.False(t, errors.Is(ErrTokenExpired, ErrTokenMalformed))
	require.False(t, errors.Is(ErrTokenSignature, ErrTokenMalformed))
}
