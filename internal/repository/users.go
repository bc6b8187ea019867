package repository

import (
	"context"
	"errors"
	"strings"

	"school_system/internal/domain"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken is returned when registering or updating to an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// Users persists account records.
type Users struct {
	db *gorm.DB
}

// NewUsers creates the user repository.
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create stores a new user. Emails are normalized to lowercase.
func (r *Users) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// ByEmail looks a user up by login email.
func (r *Users) ByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// ByID looks a user up by primary key.
func (r *Users) ByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// UpdateProfile mutates the caller-editable fields of a user record.
func (r *Users) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return r.db.WithContext(ctx).Model(user).
		Select("email", "first_name", "last_name").
		Updates(map[string]any{
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		}).Error
}
