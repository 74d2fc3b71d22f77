package uploads

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	t.Setenv("UPLOAD_SIGNING_SECRET", "test-secret")

	signed := SignedURL("portfolio/abc123/work.png", time.Hour)
	require.True(t, strings.HasPrefix(signed, "/files/portfolio/abc123/work.png?"))

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()

	err = VerifySignature("portfolio/abc123/work.png", q.Get("expires"), q.Get("sig"))
	assert.NoError(t, err)
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	t.Setenv("UPLOAD_SIGNING_SECRET", "test-secret")

	signed := SignedURL("kyc/u1/doc.pdf", time.Hour)
	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()

	// different path, same signature
	err = VerifySignature("kyc/u2/doc.pdf", q.Get("expires"), q.Get("sig"))
	assert.Error(t, err)

	// mangled signature
	err = VerifySignature("kyc/u1/doc.pdf", q.Get("expires"), q.Get("sig")+"x")
	assert.Error(t, err)

	// different secret
	t.Setenv("UPLOAD_SIGNING_SECRET", "other-secret")
	err = VerifySignature("kyc/u1/doc.pdf", q.Get("expires"), q.Get("sig"))
	assert.Error(t, err)
}

func TestVerifySignatureRejectsExpired(t *testing.T) {
	t.Setenv("UPLOAD_SIGNING_SECRET", "test-secret")

	past := time.Now().Add(-time.Minute).Unix()
	sig := computeSignature([]byte("test-secret"), "kyc/u1/doc.pdf", past)

	err := VerifySignature("kyc/u1/doc.pdf", fmt.Sprint(past), sig)
	assert.ErrorContains(t, err, "expired")
}

func TestVerifySignatureRejectsBadExpiry(t *testing.T) {
	t.Setenv("UPLOAD_SIGNING_SECRET", "test-secret")

	err := VerifySignature("kyc/u1/doc.pdf", "not-a-number", "sig")
	assert.Error(t, err)
}
