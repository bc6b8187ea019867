package repository

import (
	"context"

	"school_system/internal/domain"

	"gorm.io/gorm"
)

// Attendance persists daily attendance records.
type Attendance struct {
	db *gorm.DB
}

// NewAttendance creates the attendance repository.
func NewAttendance(db *gorm.DB) *Attendance {
	return &Attendance{db: db}
}

// List returns all attendance records with the student's account preloaded
// so responses can include the student name.
func (r *Attendance) List(ctx context.Context) ([]domain.Attendance, error) {
	var records []domain.Attendance
	err := r.db.WithContext(ctx).Preload("Student.User").Order("id").Find(&records).Error
	return records, err
}

// Create stores one marking event. Duplicate (student, date) pairs are
// accepted; the schema defines no uniqueness there.
func (r *Attendance) Create(ctx context.Context, record *domain.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}
