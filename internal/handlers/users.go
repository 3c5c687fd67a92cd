package handlers

import (
	"errors"
	"net/http"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/auth"
	"tendercrm/models"
)

type UserPatch struct {
	Email    models.Optional[string] `json:"email"`
	Password models.Optional[string] `json:"password"`
	Role     models.Optional[string] `json:"role"`
	FullName models.Optional[string] `json:"full_name"`
}

func (p *UserPatch) validate() error {
	if err := firstErr(
		notNull("email", p.Email),
		notNull("password", p.Password),
		notNull("role", p.Role),
	); err != nil {
		return err
	}
	if p.Email.Present() {
		p.Email.Value = models.NormalizeEmail(p.Email.Value)
		if err := checkVar("email", p.Email.Value, "required,email"); err != nil {
			return err
		}
	}
	if p.Password.Present() {
		if err := checkVar("password", p.Password.Value, "required,min=6"); err != nil {
			return err
		}
	}
	if p.Role.Present() && !models.Role(p.Role.Value).Valid() {
		return apperr.InvalidFields("Некорректная роль", map[string]string{"role": "oneof"})
	}
	return nil
}

func (h *Handler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		writeError(w, r, storageError(err, msgUserNotFound))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var p UserPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	missing := map[string]string{}
	if !p.Email.Present() {
		missing["email"] = "required"
	}
	if !p.Password.Present() {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		writeError(w, r, apperr.InvalidFields("Ошибка валидации", missing))
		return
	}

	hash, err := auth.HashPassword(p.Password.Value, h.BcryptCost)
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	u := &models.User{
		Email:        p.Email.Value,
		PasswordHash: hash,
		Role:         models.RoleUser,
		FullName:     textPtr(p.FullName),
	}
	if p.Role.Present() {
		u.Role = models.Role(p.Role.Value)
	}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		writeError(w, r, userStorageError(err))
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUserHandler: администратор не может снять роль с самого себя.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p UserPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if id == s.UserID && p.Role.Present() && models.Role(p.Role.Value) != models.RoleAdmin {
		writeError(w, r, apperr.Validation("Нельзя снять права администратора с самого себя"))
		return
	}

	cur, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, storageError(err, msgUserNotFound))
		return
	}

	c := db.Changes{}
	setField(c, "email", p.Email, &cur.Email)
	if p.Role.Present() {
		setField(c, "role", models.Some(models.Role(p.Role.Value)), &cur.Role)
	}
	setText(c, "full_name", p.FullName, cur.FullName)
	if p.Password.Present() {
		hash, err := auth.HashPassword(p.Password.Value, h.BcryptCost)
		if err != nil {
			writeError(w, r, apperr.Internal(err))
			return
		}
		c["password_hash"] = hash
	}

	u, err := h.Store.UpdateUser(r.Context(), id, c)
	if err != nil {
		writeError(w, r, userStorageError(err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id == s.UserID {
		writeError(w, r, apperr.Validation("Нельзя удалить самого себя"))
		return
	}
	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, storageError(err, msgUserNotFound))
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Пользователь успешно удален"})
}

func userStorageError(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apperr.Conflict(msgEmailTaken)
	}
	return storageError(err, msgUserNotFound)
}
