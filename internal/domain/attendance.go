package domain

import "time"

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Attendance Model
type Attendance struct {
	ID        uint      `json:"id" gorm:"primaryKey"`                  // Primary key
	StudentID uint      `json:"student" gorm:"not null;index"`         // Foreign key to Student
	Date      time.Time `json:"date" gorm:"not null;type:date"`        // Day the record covers
	Status    string    `json:"status" gorm:"size:10;not null"`        // present or absent
	Student   Student   `json:"-" gorm:"constraint:OnDelete:CASCADE;"` // Marked student
}

// ValidStatus reports whether status is an accepted attendance value.
func ValidStatus(status string) bool {
	return status == StatusPresent || status == StatusAbsent
}
