package app

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// mintToken produces the opaque payment-link identifier for a holding
// request. 32 random bytes, base64url: unguessable, URL-safe, and visibly
// distinct from the uuid entity ids so the two can never be confused.
func mintToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func newID() string {
	return uuid.NewString()
}
