package httpserver

import (
	"net/http"
	"time"

	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/transport/httpserver/handler"
	authmw "expense-tracker-go/internal/transport/httpserver/middleware"
	"expense-tracker-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the route table the frontend is built against, delete
// included: records are removed with a GET to the delete path.
func NewRouter(cfg config.Config, handlers *handler.Handlers, tokens authmw.TokenVerifier, users authmw.UserLoader, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Get("/health", handler.Health)

	auth := authmw.NewJWTAuth(tokens, users, log)

	r.Route("/authentication", func(r chi.Router) {
		r.Post("/register", handlers.Identity.Register)
		r.Post("/login", handlers.Identity.Login)
		r.Post("/validate-username", handlers.Identity.ValidateUsername)
		r.Post("/validate-email", handlers.Identity.ValidateEmail)
		r.Get("/activate/{uid}/{token}", handlers.Identity.Activate)
		r.Post("/request-password", handlers.Identity.RequestPasswordReset)
		r.Post("/set-new-password/{uid}/{token}", handlers.Identity.SetNewPassword)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/logout", handlers.Identity.Logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", handlers.Expenses.List)
			r.Post("/add_expense", handlers.Expenses.Create)
			r.Get("/edit-expense/{id}", handlers.Expenses.GetOne)
			r.Post("/edit-expense/{id}", handlers.Expenses.Update)
			r.Get("/expense-delete/{id}", handlers.Expenses.Delete)
			r.Post("/search-expenses", handlers.Expenses.Search)
			r.Get("/expense_category_summary", handlers.Expenses.Summary)
			r.Get("/stats", handlers.Expenses.Stats)
			r.Get("/export_csv", handlers.Expenses.ExportCSV)
			r.Get("/export_excel", handlers.Expenses.ExportExcel)
			r.Get("/export_pdf", handlers.Expenses.ExportPDF)
			r.Get("/categories", handlers.Expenses.Labels)
		})

		r.Route("/income", func(r chi.Router) {
			r.Get("/", handlers.Income.List)
			r.Post("/add_income", handlers.Income.Create)
			r.Get("/income-edit/{id}", handlers.Income.GetOne)
			r.Post("/income-edit/{id}", handlers.Income.Update)
			r.Get("/income-delete/{id}", handlers.Income.Delete)
			r.Post("/search-income", handlers.Income.Search)
			r.Get("/income_source_summary", handlers.Income.Summary)
			r.Get("/income_stats", handlers.Income.Stats)
			r.Get("/income_export_csv", handlers.Income.ExportCSV)
			r.Get("/income_export_excel", handlers.Income.ExportExcel)
			r.Get("/income_export_pdf", handlers.Income.ExportPDF)
			r.Get("/sources", handlers.Income.Labels)
		})

		r.Get("/preferences", handlers.Preferences.Get)
		r.Post("/preferences", handlers.Preferences.Save)
	})

	return r
}
