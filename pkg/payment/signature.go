package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

var ErrInvalidSignature = errors.New("webhook signature verification failed")

func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the received signature against the shared secret
// using a constant-time comparison.
func VerifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return ErrInvalidSignature
	}
	expected := ComputeSignature(secret, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
