package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes an HMAC-SHA256 signature over the given string using
// the provided hash key and returns the result as a hex-encoded string.
//
// Used on the server to store account passwords in keyed-hash form: the
// hash key never leaves the server's configuration, so a database leak alone
// does not expose offline-crackable unkeyed digests.
func HashString(data, hashKey string) string {
	h := hmac.New(sha256.New, []byte(hashKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// HashEquals compares two hex-encoded digests in constant time.
func HashEquals(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
