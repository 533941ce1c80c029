package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/app"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/models"
)

func (h *Handler) listBackups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	backups, err := h.services.BackupService.ListBackups(ctx, accountID)
	if err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("backup listing failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, models.BackupListResponse{Backups: backups, Length: len(backups)}, http.StatusOK)
}

func (h *Handler) getBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	backupID := chi.URLParam(r, "backupID")
	snapshot, err := h.services.BackupService.GetBackup(ctx, accountID, backupID)
	if err != nil {
		if errors.Is(err, store.ErrBackupNotFound) {
			http.Error(w, app.MsgBackupNotFound, http.StatusNotFound)
			return
		}
		log.Err(err).Int64("account_id", accountID).Str("backup_id", backupID).Msg("backup load failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, snapshot, http.StatusOK)
}

func (h *Handler) putBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetRoleFromContext(ctx)

	var req models.BackupPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSONProvided, http.StatusBadRequest)
		return
	}

	backupID := chi.URLParam(r, "backupID")
	if err := h.services.BackupService.PutBackup(ctx, accountID, models.Role(role), backupID, req.Name, req.Snapshot); err != nil {
		log.Err(err).Int64("account_id", accountID).Str("backup_id", backupID).Msg("backup store failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetRoleFromContext(ctx)

	backupID := chi.URLParam(r, "backupID")
	if err := h.services.BackupService.DeleteBackup(ctx, accountID, models.Role(role), backupID); err != nil {
		if errors.Is(err, store.ErrBackupNotFound) {
			http.Error(w, app.MsgBackupNotFound, http.StatusNotFound)
			return
		}
		log.Err(err).Int64("account_id", accountID).Str("backup_id", backupID).Msg("backup delete failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
