package handlers

import (
	"strconv"

	"github.com/diewo77/go-orders/internal/repository"
	"gorm.io/gorm"
)

func jsonUint(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func repositoryUsers(db *gorm.DB) *repository.UserRepository {
	return repository.NewUserRepository(db)
}
