package uploads

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"
)

func signingSecret() []byte {
	if s := os.Getenv("UPLOAD_SIGNING_SECRET"); s != "" {
		return []byte(s)
	}
	// fall back to the JWT secret so a single env var works in dev
	return []byte(os.Getenv("JWT_SECRET"))
}

func computeSignature(secret []byte, path string, expires int64) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s:%d", path, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignedURL builds a relative download URL that embeds an expiry and an
// HMAC over path plus expiry.
func SignedURL(path string, ttl time.Duration) string {
	expires := time.Now().Add(ttl).Unix()
	sig := computeSignature(signingSecret(), path, expires)
	return fmt.Sprintf("/files/%s?expires=%d&sig=%s", path, expires, sig)
}

// VerifySignature checks the signature and expiry on a download request.
func VerifySignature(path, expiresStr, sig string) error {
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expiry")
	}
	if time.Now().Unix() > expires {
		return fmt.Errorf("link expired")
	}
	want := computeSignature(signingSecret(), path, expires)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
