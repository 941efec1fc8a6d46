// Package signature checks that a payment callback was produced by the
// gateway holding the shared key secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	ErrInvalidInput      = errors.New("missing required parameters")
	ErrSignatureMismatch = errors.New("invalid signature")
)

// Sign returns the hex HMAC-SHA256 of orderID|paymentID keyed by secret.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches orderID and paymentID. The
// comparison runs in constant time.
func Verify(orderID, paymentID, signature, secret string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false, ErrInvalidInput
	}
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Check is Verify with a mismatch reported as ErrSignatureMismatch.
func Check(orderID, paymentID, signature, secret string) error {
	ok, err := Verify(orderID, paymentID, signature, secret)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSignatureMismatch
	}
	return nil
}
