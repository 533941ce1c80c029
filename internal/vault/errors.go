package vault

import "errors"

var (
	// ErrInvalidEnvelope reports that a string does not match the versioned
	// three-part envelope format or a part is not valid base64. Raised before
	// any key derivation work.
	ErrInvalidEnvelope = errors.New("invalid vault envelope")

	// ErrWrongPassword reports that authenticated decryption failed. The
	// ciphertext may also be corrupted; user-facing messages must not
	// distinguish the two cases.
	ErrWrongPassword = errors.New("vault decryption failed")

	// ErrTooManyCandidates reports that a fallback decrypt was asked to try
	// more passwords than the hard cap allows. This is a programming error,
	// not a user-actionable condition.
	ErrTooManyCandidates = errors.New("too many password candidates")

	// ErrNoCandidates reports a fallback decrypt with an empty candidate list.
	ErrNoCandidates = errors.New("no password candidates provided")
)
