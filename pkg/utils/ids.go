package utils

import (
	"github.com/google/uuid"
)

const IdempotencyHeader = "Idempotency-Key"

func GenerateUUID7() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// ValidIdempotencyKey accepts UUIDs, hex digests and short
// alphanumeric keys with dashes, underscores or colons.
func ValidIdempotencyKey(key string) bool {
	if len(key) == 0 || len(key) > 255 {
		return false
	}
	return isToken(key)
}
