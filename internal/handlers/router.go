package handlers

import (
	"net/http"
	"time"

	"tendercrm/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	CORSOrigins []string
	Logger      logrus.FieldLogger
	// Timeout запроса; 0 отключает middleware.Timeout
	Timeout time.Duration
}

// NewRouter собирает все маршруты API.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(cfg.Logger))
	r.Use(Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	r.Get("/health", h.HealthHandler)

	// вложенный Route не наследует NotFound родителя, поэтому пути плоские
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/auth/me", h.MeHandler)
			r.Post("/auth/logout", h.LogoutHandler)
			r.Get("/statuses", h.StatusesHandler)
			r.Get("/dashboard", h.DashboardHandler)

			// тендеры
			r.Get("/tenders", h.GetTendersHandler)
			r.Post("/tenders", h.CreateTenderHandler)
			r.Get("/tenders/{id}", h.GetTenderHandler)
			r.Put("/tenders/{id}", h.UpdateTenderHandler)
			r.Delete("/tenders/{id}", h.DeleteTenderHandler)

			// поставщики
			r.Get("/suppliers", h.GetSuppliersHandler)
			r.Post("/suppliers", h.CreateSupplierHandler)
			r.Get("/suppliers/{id}", h.GetSupplierHandler)
			r.Put("/suppliers/{id}", h.UpdateSupplierHandler)
			r.Delete("/suppliers/{id}", h.DeleteSupplierHandler)

			// напоминания
			r.Get("/reminders", h.GetRemindersHandler)
			r.Post("/reminders", h.CreateReminderHandler)
			r.Get("/reminders/{id}", h.GetReminderHandler)
			r.Put("/reminders/{id}", h.UpdateReminderHandler)
			r.Delete("/reminders/{id}", h.DeleteReminderHandler)

			// расходы
			r.Get("/expenses/tender/{tenderId}", h.GetExpensesHandler)
			r.Post("/expenses", h.CreateExpenseHandler)
			r.Put("/expenses/{id}", h.UpdateExpenseHandler)
			r.Delete("/expenses/{id}", h.DeleteExpenseHandler)

			r.Get("/accounting", h.GetAccountingHandler)
			r.Get("/accounting/{tenderId}", h.GetTenderAccountingHandler)

			r.Get("/company", h.GetCompanyHandler)
			r.With(h.RequireAdmin).Put("/company", h.UpdateCompanyHandler)

			r.Get("/files", h.GetFilesHandler)
			r.Get("/files/{id}", h.GetFileHandler)
			r.With(h.RequireAdmin).Post("/files", h.CreateFileHandler)
			r.With(h.RequireAdmin).Put("/files/{id}", h.UpdateFileHandler)
			r.With(h.RequireAdmin).Delete("/files/{id}", h.DeleteFileHandler)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/users", h.GetUsersHandler)
				r.Post("/users", h.CreateUserHandler)
				r.Put("/users/{id}", h.UpdateUserHandler)
				r.Delete("/users/{id}", h.DeleteUserHandler)
			})
		})
	})

	return r
}
