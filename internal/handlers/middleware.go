package handlers

import (
	"errors"
	"net/http"
	"runtime/debug"

	"tendercrm/db"
	"tendercrm/internal/apperr"
	"tendercrm/internal/auth"
	"tendercrm/internal/logger"

	"github.com/sirupsen/logrus"
)

// Authenticate проверяет Bearer-токен, перечитывает пользователя и кладёт
// сессию в контекст запроса. Роль берётся из БД, а не из токена.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := auth.BearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			writeError(w, r, apperr.Unauthorized("Токен не предоставлен"))
			return
		}
		claims, err := h.Tokens.Verify(r.Context(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, r, apperr.Forbidden("Недействительный токен"))
			} else {
				writeError(w, r, apperr.Internal(err))
			}
			return
		}
		u, err := h.Store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, r, apperr.Unauthorized(msgUserNotFound))
			} else {
				writeError(w, r, storageError(err, msgUserNotFound))
			}
			return
		}
		s := auth.SessionFromClaims(claims)
		s.Email, s.Role = u.Email, u.Role
		ctx := auth.WithSession(r.Context(), s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только администраторов. Ставится после Authenticate.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, apperr.Unauthorized("Токен не предоставлен"))
			return
		}
		if !s.IsAdmin() {
			writeError(w, r, apperr.Forbidden("Недостаточно прав"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session достаёт сессию, положенную Authenticate.
func session(r *http.Request) (auth.Session, error) {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Session{}, apperr.Unauthorized("Токен не предоставлен")
	}
	return s, nil
}

// Recoverer превращает панику в 500 с JSON-телом.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromRequest(r).WithFields(logrus.Fields{
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("panic recovered")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: apperr.InternalMessage})
		}()
		next.ServeHTTP(w, r)
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "Маршрут не найден"})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Метод не поддерживается"})
}
