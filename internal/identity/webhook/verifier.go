package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/pixelift/internal/identity/domain"
)

// Verifier checks svix-style webhook signatures: an HMAC-SHA256 over
// "{id}.{timestamp}.{body}" keyed with the base64 secret carried after the
// "whsec_" prefix, compared against any of the "v1,<sig>" entries in the
// svix-signature header.
type Verifier struct {
	key       []byte
	tolerance time.Duration
}

const (
	headerID        = "svix-id"
	headerTimestamp = "svix-timestamp"
	headerSignature = "svix-signature"

	secretPrefix     = "whsec_"
	defaultTolerance = 5 * time.Minute
)

func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, domain.ErrSecretMissing
	}
	secret = strings.TrimPrefix(secret, secretPrefix)

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, domain.ErrSecretMissing
	}

	return &Verifier{key: key, tolerance: defaultTolerance}, nil
}

// Verify returns the delivery id on success.
func (v *Verifier) Verify(payload []byte, headers http.Header) (string, error) {
	id := strings.TrimSpace(headers.Get(headerID))
	timestamp := strings.TrimSpace(headers.Get(headerTimestamp))
	sigHeader := strings.TrimSpace(headers.Get(headerSignature))
	if id == "" || timestamp == "" || sigHeader == "" {
		return "", domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", domain.ErrInvalidSignature
	}
	now := time.Now().UTC()
	sent := time.Unix(ts, 0).UTC()
	if sent.Before(now.Add(-v.tolerance)) || sent.After(now.Add(v.tolerance)) {
		return "", domain.ErrInvalidSignature
	}

	signedContent := fmt.Sprintf("%s.%s.%s", id, timestamp, string(payload))
	mac := hmac.New(sha256.New, v.key)
	_, _ = mac.Write([]byte(signedContent))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, entry := range strings.Fields(sigHeader) {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if hmac.Equal([]byte(parts[1]), []byte(expected)) {
			return id, nil
		}
	}

	return "", domain.ErrInvalidSignature
}
