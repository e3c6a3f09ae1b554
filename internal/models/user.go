package models

import "time"

// User is an API account. Superusers hold the elevated capability level.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	FullName       string    `gorm:"size:255" json:"full_name,omitempty"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser    bool      `gorm:"not null;default:false" json:"is_superuser"`
}
