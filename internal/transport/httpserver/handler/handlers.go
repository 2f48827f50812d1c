package handler

import (
	identitydomain "expense-tracker-go/internal/domain/identity"
	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	recordsdomain "expense-tracker-go/internal/domain/records"
	"expense-tracker-go/pkg/logger"
)

type Handlers struct {
	Identity    *IdentityHandlers
	Expenses    *RecordHandlers
	Income      *RecordHandlers
	Preferences *PreferenceHandlers
}

func New(
	identity *identitydomain.Service,
	expenses *recordsdomain.Service,
	income *recordsdomain.Service,
	preferences *preferencesdomain.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Identity: &IdentityHandlers{service: identity, log: log},
		Expenses: &RecordHandlers{
			service:     expenses,
			preferences: preferences,
			log:         log,
			names: recordNames{
				area:        "expenses",
				labelKey:    "category",
				labelHeader: "CATEGORY",
				summaryKey:  "expense_category_data",
				filePrefix:  "Expenses",
			},
		},
		Income: &RecordHandlers{
			service:     income,
			preferences: preferences,
			log:         log,
			names: recordNames{
				area:        "income",
				labelKey:    "source",
				labelHeader: "SOURCE",
				summaryKey:  "income_source_data",
				filePrefix:  "Income",
			},
		},
		Preferences: &PreferenceHandlers{service: preferences, log: log},
	}
}
