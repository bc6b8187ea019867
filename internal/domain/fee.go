package domain

import "time"

// FeeRecord Model
type FeeRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`                      // Primary key
	UserID      uint      `json:"student" gorm:"not null;index"`             // Foreign key to the paying user
	Amount      float64   `json:"amount" gorm:"not null;type:decimal(10,2)"` // Payment amount
	DatePaid    time.Time `json:"date_paid" gorm:"autoCreateTime;type:date"` // Assigned at creation, never client-supplied
	Description string    `json:"description" gorm:"size:255"`               // Optional free text
	User        User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`     // Paying user
}
