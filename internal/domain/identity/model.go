package identity

import "time"

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	Email        string    `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Active       bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type ResetPasswordInput struct {
	UserID          string
	Token           string
	Password        string
	ConfirmPassword string
}
