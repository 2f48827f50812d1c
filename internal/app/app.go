package app

import (
	"net/http"

	"expense-tracker-go/internal/auth"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/db"
	identitydomain "expense-tracker-go/internal/domain/identity"
	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	recordsdomain "expense-tracker-go/internal/domain/records"
	"expense-tracker-go/internal/mail"
	identityrepo "expense-tracker-go/internal/repository/postgres/identity"
	preferencesrepo "expense-tracker-go/internal/repository/postgres/preferences"
	recordsrepo "expense-tracker-go/internal/repository/postgres/records"
	"expense-tracker-go/internal/transport/httpserver"
	"expense-tracker-go/internal/transport/httpserver/handler"
	"expense-tracker-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret)
	mailer := mail.NewSMTPMailer(cfg.SMTP)

	userRepo := identityrepo.NewPostgres(dbConn)
	identityService := identitydomain.NewService(userRepo, tokens, mailer, identitydomain.Config{
		BaseURL:       cfg.BaseURL,
		SessionTTL:    cfg.Auth.SessionTTL,
		ActivationTTL: cfg.Auth.ActivationTTL,
		ResetTTL:      cfg.Auth.ResetTTL,
	})

	expenseService := recordsdomain.NewService(recordsrepo.NewExpenses(dbConn), recordsdomain.KindExpense, cfg.PageSize)
	incomeService := recordsdomain.NewService(recordsrepo.NewIncomes(dbConn), recordsdomain.KindIncome, cfg.PageSize)
	preferenceService := preferencesdomain.NewService(preferencesrepo.NewPostgres(dbConn), cfg.CurrenciesFile)

	handlers := handler.New(identityService, expenseService, incomeService, preferenceService, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, tokens, userRepo, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
