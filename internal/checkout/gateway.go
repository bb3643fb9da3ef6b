package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Gateway holds the payment-gateway widget settings.
type Gateway struct {
	KeyID     string
	Secret    string // optional; enables callback signature checks
	Currency  string
	StoreName string
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Handoff is everything the browser needs to open the gateway widget.
type Handoff struct {
	IntentID    string  `json:"intentId"`
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
}

// Callback is the gateway's success response relayed by the browser.
type Callback struct {
	IntentID  string `json:"intentId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Sign computes hex(HMAC-SHA256(intentID + "|" + paymentID)).
func Sign(secret, intentID, paymentID string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(m.Sum(nil))
}

func (g Gateway) verify(cb Callback) bool {
	if g.Secret == "" {
		return true
	}
	return hmac.Equal([]byte(Sign(g.Secret, cb.IntentID, cb.PaymentID)), []byte(cb.Signature))
}
