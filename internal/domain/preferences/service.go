package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultCurrency is used wherever a currency is rendered before the user
// has saved a preference row.
const DefaultCurrency = "USD"

type Service struct {
	repo Repository
	// catalogue file path; re-read on every call so edits to the file take
	// effect without a restart.
	currenciesFile string
}

func NewService(repo Repository, currenciesFile string) *Service {
	return &Service{repo: repo, currenciesFile: currenciesFile}
}

// Currencies loads the static currency catalogue, sorted by code.
func (s *Service) Currencies(ctx context.Context) ([]Currency, error) {
	contents, err := os.ReadFile(s.currenciesFile)
	if err != nil {
		return nil, fmt.Errorf("read currencies file: %w", err)
	}

	var byCode map[string]string
	if err := json.Unmarshal(contents, &byCode); err != nil {
		return nil, fmt.Errorf("parse currencies file: %w", err)
	}

	currencies := make([]Currency, 0, len(byCode))
	for code, name := range byCode {
		currencies = append(currencies, Currency{Code: code, Name: name})
	}
	sort.Slice(currencies, func(i, j int) bool {
		return currencies[i].Code < currencies[j].Code
	})

	return currencies, nil
}

// CurrencyFor returns the owner's saved currency code, falling back to the
// default when no preference row exists yet.
func (s *Service) CurrencyFor(ctx context.Context, ownerID string) (string, error) {
	preference, err := s.repo.GetPreference(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return DefaultCurrency, nil
		}
		return "", err
	}
	return preference.Currency, nil
}

// Save validates the code against the catalogue and lazily creates or
// updates the single per-user row.
func (s *Service) Save(ctx context.Context, ownerID, currency string) (*Preference, error) {
	currency = strings.TrimSpace(currency)

	currencies, err := s.Currencies(ctx)
	if err != nil {
		return nil, err
	}

	known := false
	for _, candidate := range currencies {
		if candidate.Code == currency {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrUnknownCurrency
	}

	preference := Preference{OwnerID: ownerID, Currency: currency}
	if err := s.repo.UpsertPreference(ctx, &preference); err != nil {
		return nil, err
	}
	return &preference, nil
}

// Saved returns the preference row if one exists; the bool reports presence.
func (s *Service) Saved(ctx context.Context, ownerID string) (*Preference, bool, error) {
	preference, err := s.repo.GetPreference(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return preference, true, nil
}
