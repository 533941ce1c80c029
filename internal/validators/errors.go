package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyLogin          = errors.New("login is required")
	ErrEmptyPassword       = errors.New("password is required")
	ErrNilSnapshot         = errors.New("snapshot is required")
	ErrMissingSnapshotMeta = errors.New("snapshot commit meta is required")
	ErrEmptyBackupID       = errors.New("backup id is required")
	ErrEmptyBackupName     = errors.New("backup name is required")
)
