package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/app"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/service"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSONProvided, http.StatusBadRequest)
		return
	}

	registered, err := h.services.AuthService.Register(ctx, account)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrLoginAlreadyExists):
			log.Err(err).Msg("login already exists")
			http.Error(w, app.MsgLoginAlreadyExists, http.StatusConflict)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during account registration")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	h.respondWithToken(w, r, registered)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSONProvided, http.StatusBadRequest)
		return
	}

	found, err := h.services.AuthService.Login(ctx, account)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrNoAccountWasFound) || errors.Is(err, service.ErrWrongPassword):
			log.Err(err).Msg("no account was found/wrong password")
			http.Error(w, app.MsgInvalidLoginPassword, http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during account login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	log.Debug().Int64("id", found.AccountID).Str("login", found.Login).Msg("account logged in")

	h.respondWithToken(w, r, found)
}

// changePassword verifies the caller's current password and, when a new
// one is supplied, rotates it and issues a token for the new credentials.
// An empty new password makes this a verification-only request.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no account id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSONProvided, http.StatusBadRequest)
		return
	}

	account, err := h.services.AuthService.ChangePassword(ctx, accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("password change failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	if req.NewPassword == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.respondWithToken(w, r, account)
}

// respondWithToken issues a JWT for account and returns it in the
// Authorization response header along with the public account fields.
func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, account models.Account) {
	log := logger.FromRequest(r)

	token, err := h.services.AuthService.CreateToken(r.Context(), account)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))

	account.PasswordHash = ""
	utils.WriteJSON(w, account, http.StatusOK)
}
