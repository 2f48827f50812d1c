package records

import (
	"context"
	"errors"
	"time"

	recordsdomain "expense-tracker-go/internal/domain/records"
	"gorm.io/gorm"
)

// PostgresRepository serves one record table; the expense and income
// variants differ only in table, label column, and lookup table names.
type PostgresRepository struct {
	db          *gorm.DB
	table       string
	labelColumn string
	labelTable  string
}

func NewExpenses(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db, table: "expenses", labelColumn: "category", labelTable: "categories"}
}

func NewIncomes(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db, table: "incomes", labelColumn: "source", labelTable: "sources"}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(recordsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx, table: r.table, labelColumn: r.labelColumn, labelTable: r.labelTable})
	})
}

type recordRow struct {
	ID          string
	OwnerID     string
	Amount      float64
	Description string
	Label       string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (row recordRow) toDomain() recordsdomain.Record {
	return recordsdomain.Record{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Amount:      row.Amount,
		Description: row.Description,
		Label:       row.Label,
		Date:        row.Date,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (r *PostgresRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(r.table).
		Select("id, owner_id, amount, description, " + r.labelColumn + " AS label, date, created_at, updated_at")
}

func (r *PostgresRepository) ListRecords(ctx context.Context, ownerID string, limit, offset int) ([]recordsdomain.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.base(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []recordRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toDomainSlice(rows), total, nil
}

func (r *PostgresRepository) ListAllRecords(ctx context.Context, ownerID string) ([]recordsdomain.Record, error) {
	var rows []recordRow
	if err := r.base(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func (r *PostgresRepository) GetRecordByID(ctx context.Context, ownerID, recordID string) (*recordsdomain.Record, error) {
	var row recordRow
	if err := r.base(ctx).
		Where("owner_id = ? AND id = ?", ownerID, recordID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recordsdomain.ErrRecordNotFound
		}
		return nil, err
	}
	record := row.toDomain()
	return &record, nil
}

func (r *PostgresRepository) CreateRecord(ctx context.Context, record *recordsdomain.Record) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	return r.db.WithContext(ctx).Table(r.table).Create(map[string]interface{}{
		"id":          record.ID,
		"owner_id":    record.OwnerID,
		"amount":      record.Amount,
		"description": record.Description,
		r.labelColumn: record.Label,
		"date":        record.Date,
		"created_at":  record.CreatedAt,
		"updated_at":  record.UpdatedAt,
	}).Error
}

func (r *PostgresRepository) UpdateRecord(ctx context.Context, record *recordsdomain.Record) error {
	return r.db.WithContext(ctx).
		Table(r.table).
		Where("id = ? AND owner_id = ?", record.ID, record.OwnerID).
		Updates(map[string]interface{}{
			"amount":      record.Amount,
			"description": record.Description,
			r.labelColumn: record.Label,
			"date":        record.Date,
			"updated_at":  record.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) DeleteRecord(ctx context.Context, ownerID, recordID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Table(r.table).
		Where("owner_id = ? AND id = ?", ownerID, recordID).
		Delete(nil)
	return result.RowsAffected > 0, result.Error
}

// SearchRecords builds the four-way union the tracker's search box expects:
// amount and date match on prefix, description and label on case-insensitive
// substring. Owner scoping applies before any predicate.
func (r *PostgresRepository) SearchRecords(ctx context.Context, ownerID, term string) ([]recordsdomain.Record, error) {
	prefix := term + "%"
	substring := "%" + term + "%"

	var rows []recordRow
	if err := r.base(ctx).
		Where("owner_id = ?", ownerID).
		Where(
			"CAST(amount AS TEXT) LIKE ? OR to_char(date, 'YYYY-MM-DD') LIKE ? OR description ILIKE ? OR "+r.labelColumn+" ILIKE ?",
			prefix, prefix, substring, substring,
		).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(rows), nil
}

func (r *PostgresRepository) SummaryByLabel(ctx context.Context, ownerID string, from, to time.Time) (map[string]float64, error) {
	var rows []struct {
		Label string
		Total float64
	}

	if err := r.db.WithContext(ctx).
		Table(r.table).
		Select(r.labelColumn+" AS label, SUM(amount) AS total").
		Where("owner_id = ? AND date >= ? AND date <= ?", ownerID, from, to).
		Group(r.labelColumn).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(rows))
	for _, row := range rows {
		result[row.Label] = row.Total
	}
	return result, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, ownerID string, from, to time.Time) (recordsdomain.Stats, error) {
	var row struct {
		Count int64
		Total float64
	}

	if err := r.db.WithContext(ctx).
		Table(r.table).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("owner_id = ? AND date >= ? AND date <= ?", ownerID, from, to).
		Find(&row).Error; err != nil {
		return recordsdomain.Stats{}, err
	}

	return recordsdomain.Stats{Count: row.Count, Total: row.Total}, nil
}

func (r *PostgresRepository) ListLabels(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Table(r.labelTable).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func toDomainSlice(rows []recordRow) []recordsdomain.Record {
	items := make([]recordsdomain.Record, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items
}
