package preferences

import "time"

// Preference is the single per-user row; it is created lazily the first time
// the user saves a currency and updated in place after that.
type Preference struct {
	OwnerID   string    `gorm:"type:uuid;primaryKey"`
	Currency  string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Currency struct {
	Code string `json:"name"`
	Name string `json:"value"`
}
