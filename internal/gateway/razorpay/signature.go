package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// VerifyPaymentSignature checks the checkout callback signature: an
// HMAC-SHA256 over "orderID|paymentID" keyed with the API key secret,
// hex encoded.
func VerifyPaymentSignature(keySecret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(keySecret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%s|%s", orderID, paymentID)))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
