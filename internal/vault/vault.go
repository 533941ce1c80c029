package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// envelopeVersion is the literal prefix of every envelope produced by
	// this package. Future KDF or cipher changes bump the version so old
	// and new envelopes can coexist.
	envelopeVersion = "v1"

	// envelopeParts is version + salt + nonce + ciphertext.
	envelopeParts = 4

	saltSize = 16

	// nonceSize is the standard GCM nonce length. Fixed by the cipher
	// construction, so it can be validated before any key derivation.
	nonceSize = 12

	// maxCandidates bounds the KDF cost of a single fallback decrypt.
	maxCandidates = 5
)

// service is the private implementation of [Service].
type service struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewService constructs a [Service] with the Argon2id parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewService() Service {
	return &service{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// Encrypt implements [Service]. The envelope wire form is
//
//	v1.<base64(salt)>.<base64(nonce)>.<base64(ciphertext+tag)>
//
// with standard base64 encoding for every segment. A new salt and nonce are
// generated on every call; envelopes are never reused or updated in place.
func (s *service) Encrypt(password string, payload any) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal vault payload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err = io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := s.buildCipher(password, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	enc := base64.StdEncoding
	return strings.Join([]string{
		envelopeVersion,
		enc.EncodeToString(salt),
		enc.EncodeToString(nonce),
		enc.EncodeToString(ciphertext),
	}, "."), nil
}

// Decrypt implements [Service]. The envelope format is validated in full
// before the key is derived, so malformed input is rejected cheaply and
// format failures carry no timing signal about password correctness.
func (s *service) Decrypt(password, envelope string, target any) error {
	salt, nonce, ciphertext, err := parseEnvelope(envelope)
	if err != nil {
		return err
	}

	gcm, err := s.buildCipher(password, salt)
	if err != nil {
		return err
	}

	// An open failure almost always means a wrong password; a corrupted
	// ciphertext is indistinguishable by construction.
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrongPassword, err)
	}

	if err = json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal vault payload: %w", err)
	}

	return nil
}

// DecryptWithFallback implements [Service]. The bounded candidate list
// supports two coexisting unlock paths (a dedicated
// privacy password and, optionally, the general sync password) without
// storing either in plaintext alongside the data.
func (s *service) DecryptWithFallback(passwords []string, envelope string, target any) error {
	if len(passwords) == 0 {
		return ErrNoCandidates
	}
	if len(passwords) > maxCandidates {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(passwords), maxCandidates)
	}

	var lastErr error
	for _, password := range passwords {
		err := s.Decrypt(password, envelope, target)
		if err == nil {
			return nil
		}
		// A format error will not improve on the next candidate.
		if errors.Is(err, ErrInvalidEnvelope) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// buildCipher derives a 256-bit key from password and salt via Argon2id and
// wraps it in an AES-GCM AEAD.
func (s *service) buildCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(
		[]byte(password),
		salt,
		s.argonTime,
		s.argonMemory,
		s.argonThreads,
		s.argonKeyLen,
	)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}

// parseEnvelope splits and base64-decodes an envelope string. It performs
// every format check needed before key derivation.
func parseEnvelope(envelope string) (salt, nonce, ciphertext []byte, err error) {
	parts := strings.Split(envelope, ".")
	if len(parts) != envelopeParts {
		return nil, nil, nil, fmt.Errorf("%w: expected %d segments, got %d", ErrInvalidEnvelope, envelopeParts, len(parts))
	}
	if parts[0] != envelopeVersion {
		return nil, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidEnvelope, parts[0])
	}

	enc := base64.StdEncoding
	if salt, err = enc.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode salt: %w", ErrInvalidEnvelope, err)
	}
	if nonce, err = enc.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode nonce: %w", ErrInvalidEnvelope, err)
	}
	if ciphertext, err = enc.DecodeString(parts[3]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode ciphertext: %w", ErrInvalidEnvelope, err)
	}

	if len(salt) != saltSize {
		return nil, nil, nil, fmt.Errorf("%w: bad salt length %d", ErrInvalidEnvelope, len(salt))
	}
	if len(nonce) != nonceSize {
		return nil, nil, nil, fmt.Errorf("%w: bad nonce length %d", ErrInvalidEnvelope, len(nonce))
	}

	return salt, nonce, ciphertext, nil
}
