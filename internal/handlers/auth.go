package handlers

import (
	"errors"
	"net/http"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/auth"
	"tendercrm/models"

	"github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type userResponse struct {
	User models.User `json:"user"`
}

const (
	msgEmailTaken       = "Пользователь с таким email уже существует"
	msgBadCredentials   = "Неверный email или пароль"
	msgLogoutSuccessful = "Выход выполнен"
)

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := validateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	u := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		FullName:     textPtr(optFromPtr(req.FullName)),
	}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		writeError(w, r, userStorageError(err))
		return
	}

	h.respondWithToken(w, r, *u)
}

// LoginHandler не различает неизвестный email и неверный пароль.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = models.NormalizeEmail(req.Email)

	u, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, apperr.Unauthorized(msgBadCredentials))
			return
		}
		writeError(w, r, storageError(err, msgUserNotFound))
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		logrus.WithField("user_id", u.ID).Info("failed login attempt")
		writeError(w, r, apperr.Unauthorized(msgBadCredentials))
		return
	}

	h.respondWithToken(w, r, *u)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, u models.User) {
	token, err := h.Tokens.Issue(u)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

// MeHandler отдаёт текущую запись пользователя.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Store.GetUser(r.Context(), s.UserID)
	if err != nil {
		writeError(w, r, storageError(err, msgUserNotFound))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: *u})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Tokens.Revoke(r.Context(), s); err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msgLogoutSuccessful})
}

func optFromPtr[T any](p *T) models.Optional[T] {
	if p == nil {
		return models.Optional[T]{}
	}
	return models.Some(*p)
}
