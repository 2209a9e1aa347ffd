// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByLogin("alice")
package users

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin retrieves a user by username or email.
func (r *Repository) GetUserByLogin(login string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTokenHash retrieves a user by the SHA-256 hash of their API token.
func (r *Repository) GetUserByTokenHash(tokenHash string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("token_hash = ?", tokenHash).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether the username or the email is already taken.
func (r *Repository) UserExists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error
	return count > 0, err
}

// UserExistsExcept is UserExists ignoring the account with the given id.
func (r *Repository) UserExistsExcept(id uint, username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("id <> ?", id).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// UpdateUserFields applies a partial update. Returns gorm.ErrRecordNotFound
// when no user has the given ID.
func (r *Repository) UpdateUserFields(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
