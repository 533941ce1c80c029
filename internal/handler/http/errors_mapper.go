package http

import (
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/service"
	"github.com/linkdeck/linkdeck/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrPushForbidden:           http.StatusForbidden,

	store.ErrLoginAlreadyExists: http.StatusConflict,
	store.ErrNoAccountWasFound:  http.StatusNotFound,
	store.ErrSnapshotNotFound:   http.StatusNotFound,
	store.ErrBackupNotFound:     http.StatusNotFound,

	store.ErrStorageUnavailable: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
