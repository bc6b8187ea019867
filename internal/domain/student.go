package domain

import "time"

// Student Model
type Student struct {
	ID           uint      `json:"id" gorm:"primaryKey"`                          // Primary key
	UserID       uint      `json:"user" gorm:"uniqueIndex;not null"`              // Foreign key to User, one student per account
	EnrolledDate time.Time `json:"enrolled_date" gorm:"autoCreateTime;type:date"` // Set once at enrollment
	User         User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`         // Owning account
}
