package records

import "time"

// Expense and Income are structurally identical owner-scoped records; the
// grouping label is a free-text category or source name populated from the
// shared lookup tables, with no foreign key.

type Expense struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	OwnerID     string    `gorm:"type:uuid;index;not null"`
	Amount      float64   `gorm:"type:numeric(12,2);not null"`
	Description string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	Date        time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type Income struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	OwnerID     string    `gorm:"type:uuid;index;not null"`
	Amount      float64   `gorm:"type:numeric(12,2);not null"`
	Description string    `gorm:"not null"`
	Source      string    `gorm:"not null"`
	Date        time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Income) TableName() string { return "incomes" }

type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

type Source struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

// Record is the kind-neutral view the service works with; Label carries the
// category (expenses) or source (income).
type Record struct {
	ID          string
	OwnerID     string
	Amount      float64
	Description string
	Label       string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

type RecordInput struct {
	OwnerID     string
	Amount      float64
	Description string
	Label       string
	Date        string
}

type Page struct {
	Items     []Record
	Total     int64
	Page      int
	PageCount int
}

// Stats aggregates the trailing summary window.
type Stats struct {
	Count int64
	Total float64
}
