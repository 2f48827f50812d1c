//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"expense-tracker-go/internal/auth"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/db"
	identitydomain "expense-tracker-go/internal/domain/identity"
	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	recordsdomain "expense-tracker-go/internal/domain/records"
	identityrepo "expense-tracker-go/internal/repository/postgres/identity"
	preferencesrepo "expense-tracker-go/internal/repository/postgres/preferences"
	recordsrepo "expense-tracker-go/internal/repository/postgres/records"
	"expense-tracker-go/internal/transport/httpserver"
	"expense-tracker-go/internal/transport/httpserver/handler"
	"expense-tracker-go/pkg/logger"
	"gorm.io/gorm"
)

const testSecret = "e2e-secret"

type testEnv struct {
	server *httptest.Server
	tokens *auth.TokenIssuer
	db     *gorm.DB
}

// nopMailer satisfies the identity service without a live SMTP relay; the
// activation flow is exercised by minting tokens with the shared secret.
type nopMailer struct{}

func (nopMailer) SendActivation(context.Context, string, string, string) error    { return nil }
func (nopMailer) SendPasswordReset(context.Context, string, string, string) error { return nil }

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.NewNop()

	cfg := config.Config{
		DB:             config.DBConfig{DSN: dsn},
		CORSOrigins:    []string{"*"},
		CurrenciesFile: currenciesFile(t),
		PageSize:       5,
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	tokens := auth.NewTokenIssuer(testSecret)

	userRepo := identityrepo.NewPostgres(dbConn)
	identityService := identitydomain.NewService(userRepo, tokens, nopMailer{}, identitydomain.Config{
		BaseURL:       "http://localhost:8080",
		SessionTTL:    time.Hour,
		ActivationTTL: time.Hour,
		ResetTTL:      time.Hour,
	})
	expenseService := recordsdomain.NewService(recordsrepo.NewExpenses(dbConn), recordsdomain.KindExpense, cfg.PageSize)
	incomeService := recordsdomain.NewService(recordsrepo.NewIncomes(dbConn), recordsdomain.KindIncome, cfg.PageSize)
	preferenceService := preferencesdomain.NewService(preferencesrepo.NewPostgres(dbConn), cfg.CurrenciesFile)

	handlers := handler.New(identityService, expenseService, incomeService, preferenceService, log)
	router := httpserver.NewRouter(cfg, handlers, tokens, userRepo, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, tokens: tokens, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func currenciesFile(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/currencies.json"
	contents := `{"USD": "United States Dollar", "EUR": "Euro"}`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write currencies file: %v", err)
	}
	return path
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE preferences, expenses, incomes, users RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type registerResponse struct {
	Message string `json:"message"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Active   bool   `json:"active"`
	} `json:"user"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type expenseResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

type expenseListResponse struct {
	Items     []expenseResponse `json:"items"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	PageCount int               `json:"page_count"`
	Currency  string            `json:"currency"`
}

// registerAndActivate walks the real signup path, then activates with a token
// minted from the shared secret in place of the emailed link.
func registerAndActivate(t *testing.T, env *testEnv, client *http.Client, username string) string {
	t.Helper()

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/authentication/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var reg registerResponse
	if err := json.Unmarshal(body, &reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if reg.User.Active {
		t.Fatalf("expected account to start inactive")
	}

	activation, err := env.tokens.Generate(reg.User.ID, auth.PurposeActivation, time.Hour)
	if err != nil {
		t.Fatalf("generate activation token: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodGet,
		env.server.URL+"/authentication/activate/"+reg.User.ID+"/"+activation, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/authentication/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" {
		t.Fatalf("expected a session token")
	}

	return login.Token
}

func TestE2ERegistrationFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/authentication/register", "", map[string]string{
		"username": "sam",
		"email":    "sam@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	// the account is not active yet, login must be refused
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/authentication/login", "", map[string]string{
		"username": "sam",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("login before activation: expected 403, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "account_not_active" {
		t.Fatalf("expected account_not_active, got %q", errResp.Error.Code)
	}

	// duplicate username is a conflict
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/authentication/register", "", map[string]string{
		"username": "sam",
		"email":    "other@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EExpenseFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	token := registerAndActivate(t, env, client, "alex")

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/expenses/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: expected 401, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/expenses/add_expense", token, map[string]interface{}{
		"amount":      42.5,
		"description": "Morning coffee",
		"category":    "Food",
		"date":        "2026-08-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var created expenseResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if created.ID == "" || created.Category != "Food" {
		t.Fatalf("unexpected expense: %+v", created)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/expenses/", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var list expenseListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("expected one expense, got %+v", list)
	}
	if list.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %q", list.Currency)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/expenses/search-expenses", token, map[string]string{
		"searchText": "coffee",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var found []expenseResponse
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found) != 1 || found[0].ID != created.ID {
		t.Fatalf("expected the created expense, got %+v", found)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/expenses/export_csv", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export csv: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	if !strings.Contains(string(body), "Morning coffee") {
		t.Fatalf("expected exported row, got %q", string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/expenses/expense-delete/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/expenses/expense-delete/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EPreferences(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	token := registerAndActivate(t, env, client, "kim")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/preferences", token, map[string]string{
		"currency": "EUR",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save preference: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/preferences", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get preferences: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var prefs struct {
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		t.Fatalf("decode preferences: %v", err)
	}
	if prefs.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", prefs.Currency)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/preferences", token, map[string]string{
		"currency": "XXX",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown currency: expected 400, got %d: %s", resp.StatusCode, string(body))
	}
}
