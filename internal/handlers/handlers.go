package handlers

import (
	"net/http"
	"time"

	"tendercrm/internal/accounting"
	"tendercrm/internal/apperr"
	"tendercrm/internal/auth"
	"tendercrm/internal/convert"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store      StorageInterface
	Tokens     *auth.TokenManager
	Accounting *accounting.Calculator
	BcryptCost int

	now func() time.Time
}

type Option func(*Handler)

func WithTaxRate(rate float64) Option {
	return func(h *Handler) { h.Accounting = accounting.New(rate, convert.StatusLabel) }
}

func WithBcryptCost(cost int) Option {
	return func(h *Handler) { h.BcryptCost = cost }
}

// WithClock подменяет текущее время (для тестов).
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, tokens *auth.TokenManager, opts ...Option) *Handler {
	h := &Handler{
		Store:      store,
		Tokens:     tokens,
		Accounting: accounting.New(accounting.DefaultTaxRate, convert.StatusLabel),
		BcryptCost: 10,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthHandler проверяет, что сервер жив и БД отвечает.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, r, &apperr.Error{Kind: apperr.KindInternal, Message: "База данных недоступна", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// StatusesHandler отдаёт справочник статусов с подписями и переходами.
func (h *Handler) StatusesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, convert.StatusCatalog())
}
