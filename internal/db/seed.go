package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-orders/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin ensures a superuser with the given email exists. It is idempotent:
// an existing account is promoted and reactivated but its password is kept.
// Empty credentials make it a no-op.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	err := conn.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return conn.Model(&existing).Updates(map[string]any{"is_superuser": true, "is_active": true}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{Email: email, HashedPassword: string(hash), FullName: "Administrator", IsActive: true, IsSuperuser: true}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
