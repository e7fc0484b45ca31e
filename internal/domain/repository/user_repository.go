package repository

import (
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByPhone(db *gorm.DB, phone string) (*entity.User, error)
	Update(db *gorm.DB, user *entity.User) error
	UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type RoleRepository interface {
	FindByName(db *gorm.DB, name string) (*entity.Role, error)
	FindAll(db *gorm.DB) ([]entity.Role, error)
}
