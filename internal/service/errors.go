package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrPushForbidden is returned when a viewer account attempts a write
	// to the live snapshot or the backup set.
	ErrPushForbidden = errors.New("account role does not permit writes")
)
