package http

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

const WebhookSignatureHeader = "x-paystack-signature"

// WebhookSignature checks the hex HMAC-SHA512 of the raw body. Without a secret every body passes.
type WebhookSignature struct {
	secret []byte
}

func NewWebhookSignature(secret string) WebhookSignature {
	return WebhookSignature{secret: []byte(secret)}
}

func (s WebhookSignature) Enabled() bool {
	return len(s.secret) > 0
}

func (s WebhookSignature) Verify(body []byte, signature string) bool {
	if !s.Enabled() {
		return true
	}

	mac := hmac.New(sha512.New, s.secret)
	_, _ = mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
