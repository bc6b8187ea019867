package repository

import (
	"context"
	"errors"

	"school_system/internal/domain"

	"gorm.io/gorm"
)

// ErrStudentExists is returned when a user already has a student record.
var ErrStudentExists = errors.New("student already exists for user")

// Students persists enrollment records.
type Students struct {
	db *gorm.DB
}

// NewStudents creates the student repository.
func NewStudents(db *gorm.DB) *Students {
	return &Students{db: db}
}

// List returns all students in enrollment order.
func (r *Students) List(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	err := r.db.WithContext(ctx).Order("id").Find(&students).Error
	return students, err
}

// Create enrolls a user as a student. One student per user.
func (r *Students) Create(ctx context.Context, student *domain.Student) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Student{}).Where("user_id = ?", student.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrStudentExists
	}
	return r.db.WithContext(ctx).Create(student).Error
}

// ByID looks a student up by primary key.
func (r *Students) ByID(ctx context.Context, id uint) (domain.Student, error) {
	var student domain.Student
	err := r.db.WithContext(ctx).Preload("User").First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return student, ErrNotFound
	}
	return student, err
}
