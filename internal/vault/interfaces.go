// Package vault implements password-based authenticated encryption of the
// dashboard's private data partition. Payloads are sealed into a versioned,
// self-describing envelope string that travels opaquely inside a snapshot.
package vault

//go:generate mockgen -source=interfaces.go -destination=../mock/vault_service_mock.go -package=mock

// Service encrypts and decrypts private vault payloads.
//
// Implementations hold no state between calls: every Encrypt generates a
// fresh salt and nonce, and no plaintext or derived key is retained after a
// call returns. Ownership of decrypted plaintext stays with the caller.
type Service interface {
	// Encrypt derives a key from password with a fresh random salt, seals
	// the JSON-serialized payload under an authenticated cipher with a fresh
	// random nonce, and returns the versioned envelope string.
	Encrypt(password string, payload any) (string, error)

	// Decrypt opens envelope with password and unmarshals the plaintext
	// into target, which must be a non-nil pointer. Fails with
	// [ErrInvalidEnvelope] on malformed input (checked before any key
	// derivation) and with [ErrWrongPassword] if authentication fails.
	Decrypt(password, envelope string, target any) error

	// DecryptWithFallback tries each password candidate in order and
	// returns on the first success. The candidate count is capped; exceeding
	// it fails with [ErrTooManyCandidates] before any derivation work, so the
	// worst-case KDF cost per decrypt stays bounded.
	DecryptWithFallback(passwords []string, envelope string, target any) error
}
