package records

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

type fakeRecordsRepo struct {
	records map[string]*Record
	labels  []string
}

func newFakeRecordsRepo() *fakeRecordsRepo {
	return &fakeRecordsRepo{records: make(map[string]*Record)}
}

func (r *fakeRecordsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeRecordsRepo) owned(ownerID string) []Record {
	items := make([]Record, 0)
	for _, record := range r.records {
		if record.OwnerID == ownerID {
			items = append(items, *record)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func (r *fakeRecordsRepo) ListRecords(ctx context.Context, ownerID string, limit, offset int) ([]Record, int64, error) {
	items := r.owned(ownerID)
	total := int64(len(items))
	if offset >= len(items) {
		return []Record{}, total, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

func (r *fakeRecordsRepo) ListAllRecords(ctx context.Context, ownerID string) ([]Record, error) {
	return r.owned(ownerID), nil
}

func (r *fakeRecordsRepo) GetRecordByID(ctx context.Context, ownerID, recordID string) (*Record, error) {
	record, ok := r.records[recordID]
	if !ok || record.OwnerID != ownerID {
		return nil, ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRecordsRepo) CreateRecord(ctx context.Context, record *Record) error {
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeRecordsRepo) UpdateRecord(ctx context.Context, record *Record) error {
	existing, ok := r.records[record.ID]
	if !ok || existing.OwnerID != record.OwnerID {
		return ErrRecordNotFound
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeRecordsRepo) DeleteRecord(ctx context.Context, ownerID, recordID string) (bool, error) {
	record, ok := r.records[recordID]
	if !ok || record.OwnerID != ownerID {
		return false, nil
	}
	delete(r.records, recordID)
	return true, nil
}

func (r *fakeRecordsRepo) SearchRecords(ctx context.Context, ownerID, term string) ([]Record, error) {
	lower := strings.ToLower(term)
	matches := make([]Record, 0)
	for _, record := range r.owned(ownerID) {
		amount := strconv.FormatFloat(record.Amount, 'f', -1, 64)
		date := record.Date.Format("2006-01-02")
		if strings.HasPrefix(amount, term) ||
			strings.HasPrefix(date, term) ||
			strings.Contains(strings.ToLower(record.Description), lower) ||
			strings.Contains(strings.ToLower(record.Label), lower) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

func (r *fakeRecordsRepo) SummaryByLabel(ctx context.Context, ownerID string, from, to time.Time) (map[string]float64, error) {
	result := make(map[string]float64)
	for _, record := range r.owned(ownerID) {
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		result[record.Label] += record.Amount
	}
	return result, nil
}

func (r *fakeRecordsRepo) Stats(ctx context.Context, ownerID string, from, to time.Time) (Stats, error) {
	var stats Stats
	for _, record := range r.owned(ownerID) {
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		stats.Count++
		stats.Total += record.Amount
	}
	return stats, nil
}

func (r *fakeRecordsRepo) ListLabels(ctx context.Context) ([]string, error) {
	return append([]string{}, r.labels...), nil
}

func mustCreate(t *testing.T, svc *Service, ownerID, amountDate string, amount float64, description, label string) *Record {
	t.Helper()
	record, err := svc.Create(context.Background(), RecordInput{
		OwnerID:     ownerID,
		Amount:      amount,
		Description: description,
		Label:       label,
		Date:        amountDate,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return record
}

func TestCreate_Validation(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	cases := []struct {
		name  string
		input RecordInput
		want  error
	}{
		{"missing amount", RecordInput{OwnerID: "u1", Description: "coffee", Date: "2024-01-15"}, ErrAmountRequired},
		{"missing description", RecordInput{OwnerID: "u1", Amount: 3.5, Date: "2024-01-15"}, ErrDescriptionRequired},
		{"blank description", RecordInput{OwnerID: "u1", Amount: 3.5, Description: "   ", Date: "2024-01-15"}, ErrDescriptionRequired},
		{"malformed date", RecordInput{OwnerID: "u1", Amount: 3.5, Description: "coffee", Date: "15/01/2024"}, ErrInvalidDate},
		{"empty date", RecordInput{OwnerID: "u1", Amount: 3.5, Description: "coffee"}, ErrInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if len(repo.records) != 0 {
		t.Fatalf("invalid input must not persist a row, have %d", len(repo.records))
	}
}

func TestRoundTrip_CreateEditList(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	created := mustCreate(t, svc, "u1", "2024-01-15", 42.50, "coffee", "Food")

	updated, err := svc.Update(context.Background(), "u1", created.ID, RecordInput{
		Amount:      42.50,
		Description: "coffee",
		Label:       "Food",
		Date:        "2024-02-01",
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got := updated.Date.Format("2006-01-02"); got != "2024-02-01" {
		t.Fatalf("date not updated, got %s", got)
	}

	page, err := svc.ListPage(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("ListPage error: %v", err)
	}
	if len(page.Items) != 1 || page.Total != 1 {
		t.Fatalf("expected exactly one row, got %d (total %d)", len(page.Items), page.Total)
	}

	row := page.Items[0]
	if row.Amount != 42.50 || row.Description != "coffee" || row.Label != "Food" {
		t.Fatalf("unchanged fields were modified: %+v", row)
	}
	if got := row.Date.Format("2006-01-02"); got != "2024-02-01" {
		t.Fatalf("list shows stale date %s", got)
	}
}

func TestUpdate_NonOwnedIsNotFound(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	created := mustCreate(t, svc, "u1", "2024-01-15", 10, "lunch", "Food")

	_, err := svc.Update(context.Background(), "u2", created.ID, RecordInput{
		Amount: 99, Description: "hijack", Label: "Food", Date: "2024-01-16",
	})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if repo.records[created.ID].Amount != 10 {
		t.Fatalf("non-owner update must not mutate the row")
	}
}

func TestDelete(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	created := mustCreate(t, svc, "u1", "2024-01-15", 10, "lunch", "Food")

	if err := svc.Delete(context.Background(), "u2", created.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("non-owner delete: expected ErrRecordNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", created.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("second delete: expected ErrRecordNotFound, got %v", err)
	}
}

func TestListPage_FixedPageSize(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	for day := 1; day <= 7; day++ {
		mustCreate(t, svc, "u1", "2024-03-0"+strconv.Itoa(day), float64(day), "item", "Misc")
	}
	mustCreate(t, svc, "u2", "2024-03-01", 100, "other user", "Misc")

	first, err := svc.ListPage(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("ListPage error: %v", err)
	}
	if len(first.Items) != 5 || first.Total != 7 || first.PageCount != 2 {
		t.Fatalf("page 1: got %d items, total %d, pages %d", len(first.Items), first.Total, first.PageCount)
	}

	second, err := svc.ListPage(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("ListPage error: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("page 2: got %d items", len(second.Items))
	}

	for _, record := range append(first.Items, second.Items...) {
		if record.OwnerID != "u1" {
			t.Fatalf("listing leaked a foreign row: %+v", record)
		}
	}
}

func TestSearch_OwnerScoped(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)

	mustCreate(t, svc, "u1", "2024-01-15", 42.5, "morning coffee", "Food")
	mustCreate(t, svc, "u1", "2024-02-10", 9, "bus ticket", "Travel")
	mustCreate(t, svc, "u2", "2024-01-15", 42.5, "coffee too", "Food")

	byDescription, err := svc.Search(context.Background(), "u1", "COFFEE")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].Description != "morning coffee" {
		t.Fatalf("description search: %+v", byDescription)
	}

	byAmountPrefix, err := svc.Search(context.Background(), "u1", "42")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(byAmountPrefix) != 1 {
		t.Fatalf("amount prefix search: %+v", byAmountPrefix)
	}

	byDatePrefix, err := svc.Search(context.Background(), "u1", "2024-02")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(byDatePrefix) != 1 || byDatePrefix[0].Label != "Travel" {
		t.Fatalf("date prefix search: %+v", byDatePrefix)
	}

	empty, err := svc.Search(context.Background(), "u1", "   ")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("blank term must return nothing, got %+v", empty)
	}
}

func TestSummary_TrailingWindowGroupsByLabel(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindExpense, 5)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	recent := "2024-05-20"
	mustCreate(t, svc, "u1", recent, 10, "groceries", "Food")
	mustCreate(t, svc, "u1", recent, 20, "dinner", "Food")
	mustCreate(t, svc, "u1", recent, 7, "bus", "Travel")
	// outside the 182-day window
	mustCreate(t, svc, "u1", "2023-01-01", 500, "old laptop", "Electronics")
	// another user entirely
	mustCreate(t, svc, "u2", recent, 99, "not yours", "Food")

	summary, err := svc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}

	if summary["Food"] != 30 {
		t.Fatalf("Food total: got %v want 30", summary["Food"])
	}
	if summary["Travel"] != 7 {
		t.Fatalf("Travel total: got %v want 7", summary["Travel"])
	}
	if _, ok := summary["Electronics"]; ok {
		t.Fatalf("stale row leaked into the window")
	}

	stats, err := svc.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Count != 3 || stats.Total != 37 {
		t.Fatalf("stats: got %+v", stats)
	}
}

func TestExport_FullSetWithGrandTotal(t *testing.T) {
	repo := newFakeRecordsRepo()
	svc := NewService(repo, KindIncome, 5)

	for day := 1; day <= 9; day++ {
		mustCreate(t, svc, "u1", "2024-03-0"+strconv.Itoa(day), 10, "salary part", "Salary")
	}
	mustCreate(t, svc, "u2", "2024-03-01", 1000, "foreign", "Salary")

	items, total, err := svc.Export(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if len(items) != 9 {
		t.Fatalf("export must ignore pagination, got %d rows", len(items))
	}
	if total != 90 {
		t.Fatalf("grand total: got %v want 90", total)
	}
}
