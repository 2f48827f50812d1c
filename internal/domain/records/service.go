package records

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// summaryWindowDays is the trailing window summaries and stats aggregate
// over: six months counted as 182 days ending today.
const summaryWindowDays = 182

const defaultPageSize = 5

type Service struct {
	repo     Repository
	kind     Kind
	pageSize int
	now      func() time.Time
}

func NewService(repo Repository, kind Kind, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		repo:     repo,
		kind:     kind,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *Service) Kind() Kind { return s.kind }

// Now reports the service clock; exported files carry it in their name.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) ListPage(ctx context.Context, ownerID string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}

	items, total, err := s.repo.ListRecords(ctx, ownerID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return Page{}, err
	}

	pageCount := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if pageCount < 1 {
		pageCount = 1
	}

	return Page{
		Items:     items,
		Total:     total,
		Page:      page,
		PageCount: pageCount,
	}, nil
}

func (s *Service) Get(ctx context.Context, ownerID, recordID string) (*Record, error) {
	return s.repo.GetRecordByID(ctx, ownerID, recordID)
}

func (s *Service) Create(ctx context.Context, input RecordInput) (*Record, error) {
	record, err := s.buildRecord(input)
	if err != nil {
		return nil, err
	}

	record.ID = uuid.NewString()
	if err := s.repo.CreateRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, ownerID, recordID string, input RecordInput) (*Record, error) {
	input.OwnerID = ownerID
	validated, err := s.buildRecord(input)
	if err != nil {
		return nil, err
	}

	var updated Record
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		record, err := tx.GetRecordByID(ctx, ownerID, recordID)
		if err != nil {
			return err
		}

		record.Amount = validated.Amount
		record.Description = validated.Description
		record.Label = validated.Label
		record.Date = validated.Date
		record.UpdatedAt = s.now().UTC()

		if err := tx.UpdateRecord(ctx, record); err != nil {
			return err
		}

		updated = *record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, recordID string) error {
	deleted, err := s.repo.DeleteRecord(ctx, ownerID, recordID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRecordNotFound
	}
	return nil
}

// Search matches the term as a prefix of the amount and the ISO date, and as
// a case-insensitive substring of the description and label; results are the
// union of the four predicates.
func (s *Service) Search(ctx context.Context, ownerID, term string) ([]Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Record{}, nil
	}
	return s.repo.SearchRecords(ctx, ownerID, term)
}

func (s *Service) Summary(ctx context.Context, ownerID string) (map[string]float64, error) {
	from, to := s.summaryWindow()
	return s.repo.SummaryByLabel(ctx, ownerID, from, to)
}

func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	from, to := s.summaryWindow()
	return s.repo.Stats(ctx, ownerID, from, to)
}

// Export returns the full owner-scoped record set plus its grand total, with
// no pagination.
func (s *Service) Export(ctx context.Context, ownerID string) ([]Record, float64, error) {
	items, err := s.repo.ListAllRecords(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, record := range items {
		total += record.Amount
	}
	return items, total, nil
}

// Labels lists the shared category or source names that feed the add/edit
// forms. The list is global, not owner-scoped.
func (s *Service) Labels(ctx context.Context) ([]string, error) {
	return s.repo.ListLabels(ctx)
}

func (s *Service) buildRecord(input RecordInput) (*Record, error) {
	if input.Amount <= 0 {
		return nil, ErrAmountRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(input.Date))
	if err != nil {
		return nil, ErrInvalidDate
	}

	return &Record{
		OwnerID:     input.OwnerID,
		Amount:      input.Amount,
		Description: description,
		Label:       strings.TrimSpace(input.Label),
		Date:        date,
	}, nil
}

func (s *Service) summaryWindow() (time.Time, time.Time) {
	current := s.now().UTC()
	to := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -summaryWindowDays)
	return from, to
}
