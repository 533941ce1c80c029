package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/app"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/models"
)

// getSnapshot serves the caller's live snapshot blob. Accounts that have
// never pushed get 404, which the agent treats as "no remote state yet".
func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	snapshot, err := h.services.SnapshotService.GetSnapshot(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			http.Error(w, app.MsgNoSnapshotStored, http.StatusNotFound)
			return
		}
		log.Err(err).Int64("account_id", accountID).Msg("snapshot load failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, snapshot, http.StatusOK)
}

// putSnapshot replaces the caller's live snapshot blob whole.
func (h *Handler) putSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetRoleFromContext(ctx)

	var snapshot models.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSONProvided, http.StatusBadRequest)
		return
	}

	if err := h.services.SnapshotService.PutSnapshot(ctx, accountID, models.Role(role), &snapshot); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("snapshot store failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	log.Debug().
		Int64("account_id", accountID).
		Int64("updated_at", snapshot.Meta.UpdatedAt).
		Str("device_id", snapshot.Meta.DeviceID).
		Msg("snapshot stored")

	w.WriteHeader(http.StatusOK)
}
