package platega

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// WebhookEvent is an inbound payment status notification. Delivery is
// at-least-once; the gateway sends either id or transactionId
// depending on the endpoint version.
type WebhookEvent struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Payload       string `json:"payload"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
}

// Transaction returns whichever transaction identifier the event carries.
func (e WebhookEvent) Transaction() string {
	if e.TransactionID != "" {
		return e.TransactionID
	}
	return e.ID
}

// Gateway-specific spellings that all mean a finished payment. Anything
// else is not a paid signal and must be ignored.
var paidStatuses = map[string]struct{}{
	"paid":      {},
	"success":   {},
	"completed": {},
	"confirmed": {},
}

// IsPaid normalizes the gateway's terminal success statuses to one
// internal Paid result.
func IsPaid(status string) bool {
	_, ok := paidStatuses[strings.ToLower(status)]
	return ok
}

// VerifyResult is the outcome of a webhook signature check.
type VerifyResult int

const (
	// Unverified means no check was performed. Accepting unverified
	// events is a known security gap, logged at the ingress.
	Unverified VerifyResult = iota
	Verified
	Rejected
)

// Verifier is a pluggable webhook authentication strategy. The
// reconciler behaves identically whichever strategy is configured.
type Verifier interface {
	Verify(body []byte, signature string) VerifyResult
}

// HMACVerifier checks an HMAC-SHA256 hex signature over the raw body.
type HMACVerifier struct {
	secret string
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

func (v *HMACVerifier) Verify(body []byte, signature string) VerifyResult {
	if signature == "" {
		return Rejected
	}

	h := hmac.New(sha256.New, []byte(v.secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))

	if !strings.EqualFold(expected, signature) {
		return Rejected
	}
	return Verified
}

// NoopVerifier performs no check at all.
type NoopVerifier struct{}

func (NoopVerifier) Verify([]byte, string) VerifyResult {
	return Unverified
}
