package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureVerifier проверяет signature_key уведомлений Midtrans:
// sha512(order_id + status_code + gross_amount + server_key)
type SignatureVerifier struct {
	serverKey string
}

func NewSignatureVerifier(serverKey string) *SignatureVerifier {
	return &SignatureVerifier{serverKey: serverKey}
}

// Sign вычисляет подпись для набора полей
func (v *SignatureVerifier) Sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + v.serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify сравнивает подпись за постоянное время
func (v *SignatureVerifier) Verify(orderID, statusCode, grossAmount, signature string) bool {
	if signature == "" {
		return false
	}
	expected := v.Sign(orderID, statusCode, grossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
