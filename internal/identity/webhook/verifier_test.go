package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedHeaders(t *testing.T, key []byte, id string, ts time.Time, payload []byte) http.Header {
	t.Helper()

	timestamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, key)
	_, err := mac.Write([]byte(fmt.Sprintf("%s.%s.%s", id, timestamp, string(payload))))
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", id)
	h.Set("svix-timestamp", timestamp)
	h.Set("svix-signature", "v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return h
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	v, err := NewVerifier(secret)
	require.NoError(t, err)

	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	headers := signedHeaders(t, key, "msg_1", time.Now(), payload)

	id, err := v.Verify(payload, headers)
	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
}

func TestVerifyAcceptsSecretWithoutPrefix(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	v, err := NewVerifier(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)

	payload := []byte(`{}`)
	headers := signedHeaders(t, key, "msg_2", time.Now(), payload)

	_, err = v.Verify(payload, headers)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	v, err := NewVerifier(secret)
	require.NoError(t, err)

	payload := []byte(`{"type":"user.created"}`)
	headers := signedHeaders(t, key, "msg_3", time.Now(), payload)

	_, err = v.Verify([]byte(`{"type":"user.deleted"}`), headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	v, err := NewVerifier(secret)
	require.NoError(t, err)

	payload := []byte(`{}`)
	headers := signedHeaders(t, otherKey, "msg_4", time.Now(), payload)

	_, err = v.Verify(payload, headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	v, err := NewVerifier(secret)
	require.NoError(t, err)

	payload := []byte(`{}`)
	headers := signedHeaders(t, key, "msg_5", time.Now().Add(-time.Hour), payload)

	_, err = v.Verify(payload, headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsMissingHeaders(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	v, err := NewVerifier(secret)
	require.NoError(t, err)

	_, err = v.Verify([]byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestNewVerifierRejectsEmptySecret(t *testing.T) {
	_, err := NewVerifier("  ")
	assert.ErrorIs(t, err, domain.ErrSecretMissing)
}
