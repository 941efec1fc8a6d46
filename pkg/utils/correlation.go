package utils

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strings"
)

const CorrelationHeader = "X-Correlation-Id"

func GenerateCorrelationID() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, 6)

	for i := range result {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			idx = big.NewInt(int64(i * 17 % len(charset)))
		}
		result[i] = charset[idx.Int64()]
	}

	return string(result)
}

// CorrelationID reuses the caller's id when it looks sane, otherwise mints one.
func CorrelationID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(CorrelationHeader))
	if id == "" || len(id) > 64 || !isToken(id) {
		return GenerateCorrelationID()
	}
	return id
}

func LogPrefix(correlationID string) string {
	return "[" + correlationID + "] "
}

func isToken(s string) bool {
	for _, ch := range s {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '_' || ch == ':') {
			return false
		}
	}
	return true
}
