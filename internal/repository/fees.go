package repository

import (
	"context"
	"errors"
	"time"

	"school_system/internal/domain"

	"gorm.io/gorm"
)

// FeeFilter narrows a fee listing. Nil fields are ignored; set fields are
// combined with AND.
type FeeFilter struct {
	UserID    *uint      // Exact paying user
	MinAmount *float64   // Amount lower bound, inclusive
	MaxAmount *float64   // Amount upper bound, inclusive
	Date      *time.Time // Exact payment day
}

// FeeSummary aggregates payments for one user or the whole school.
type FeeSummary struct {
	TotalPaid     float64 `json:"total_paid"`
	TotalPayments int64   `json:"total_payments"`
}

// Fees persists payment records.
type Fees struct {
	db *gorm.DB
}

// NewFees creates the fee repository.
func NewFees(db *gorm.DB) *Fees {
	return &Fees{db: db}
}

// List returns fee records matching the filter, with the paying user
// preloaded for name serialization.
func (r *Fees) List(ctx context.Context, filter FeeFilter) ([]domain.FeeRecord, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("id")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.MinAmount != nil {
		q = q.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Date != nil {
		// Day columns are stored as timestamps; match the whole day so the
		// comparison behaves the same on MySQL and SQLite.
		day := filter.Date.Truncate(24 * time.Hour)
		q = q.Where("date_paid >= ? AND date_paid < ?", day, day.Add(24*time.Hour))
	}
	var fees []domain.FeeRecord
	err := q.Find(&fees).Error
	return fees, err
}

// Create stores a new fee record. DatePaid is assigned by the database.
func (r *Fees) Create(ctx context.Context, fee *domain.FeeRecord) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

// ByID looks a fee record up by primary key.
func (r *Fees) ByID(ctx context.Context, id uint) (domain.FeeRecord, error) {
	var fee domain.FeeRecord
	err := r.db.WithContext(ctx).Preload("User").First(&fee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fee, ErrNotFound
	}
	return fee, err
}

// Update mutates the user, amount and description of a fee record.
// DatePaid stays what it was at creation.
func (r *Fees) Update(ctx context.Context, fee *domain.FeeRecord) error {
	return r.db.WithContext(ctx).Model(fee).
		Select("user_id", "amount", "description").
		Updates(map[string]any{
			"user_id":     fee.UserID,
			"amount":      fee.Amount,
			"description": fee.Description,
		}).Error
}

// Delete removes a fee record by primary key.
func (r *Fees) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.FeeRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SummaryForUser sums and counts one user's payments, optionally bounded by
// an inclusive date range. Zero values come back when nothing matches.
func (r *Fees) SummaryForUser(ctx context.Context, userID uint, start, end *time.Time) (FeeSummary, error) {
	q := r.db.WithContext(ctx).Model(&domain.FeeRecord{}).Where("user_id = ?", userID)
	if start != nil {
		q = q.Where("date_paid >= ?", start.Truncate(24*time.Hour))
	}
	if end != nil {
		// Inclusive upper bound: anything before the next day counts.
		q = q.Where("date_paid < ?", end.Truncate(24*time.Hour).Add(24*time.Hour))
	}
	var summary FeeSummary
	err := q.Select("COALESCE(SUM(amount), 0) AS total_paid, COUNT(id) AS total_payments").Scan(&summary).Error
	return summary, err
}

// OverallSummary sums and counts every payment on record.
func (r *Fees) OverallSummary(ctx context.Context) (FeeSummary, error) {
	var summary FeeSummary
	err := r.db.WithContext(ctx).Model(&domain.FeeRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total_paid, COUNT(id) AS total_payments").
		Scan(&summary).Error
	return summary, err
}
