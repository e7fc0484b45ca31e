package repository

import (
	"errors"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	domainRepo "github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	return db.Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.findOne(db.Where("users.id = ?", id))
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return r.findOne(db.Where("LOWER(users.email) = LOWER(?)", email))
}

func (r *userRepository) FindByPhone(db *gorm.DB, phone string) (*entity.User, error) {
	return r.findOne(db.Where("users.phone_number = ?", phone))
}

func (r *userRepository) findOne(query *gorm.DB) (*entity.User, error) {
	var user entity.User
	err := query.Preload("Role").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *entity.User) error {
	return db.Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Updates(fields).Error
}

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	var role entity.Role
	err := db.Where("role_name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll(db *gorm.DB) ([]entity.Role, error) {
	var roles []entity.Role
	if err := db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
