package api

import (
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"strconv"  // Query parameter parsing
	"time"     // Date parsing and cache TTL

	"school_system/internal/domain"     // Importing domain models
	"school_system/internal/repository" // Persistence layer
	"school_system/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	overallSummaryKey = "feesummary:overall" // Cache key for the overall summary
	summaryCacheTTL   = time.Minute          // Short TTL, invalidated on writes anyway
)

// FeeResponse is the transport shape of a payment record
type FeeResponse struct {
	ID          uint    `json:"id"`
	Student     uint    `json:"student"`
	StudentName string  `json:"student_name"`
	Amount      float64 `json:"amount"`
	DatePaid    string  `json:"date_paid"`
	Description string  `json:"description"`
}

func toFeeResponse(f domain.FeeRecord) FeeResponse {
	return FeeResponse{
		ID:          f.ID,
		Student:     f.UserID,
		StudentName: f.User.FullName(),
		Amount:      f.Amount,
		DatePaid:    f.DatePaid.Format(dateLayout),
		Description: f.Description,
	}
}

// parseFeeFilter reads the optional query filters for a fee listing.
// Filters combine with AND; absent parameters are ignored.
func parseFeeFilter(c *gin.Context) (repository.FeeFilter, error) {
	var filter repository.FeeFilter
	if v := c.Query("student"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, errors.New("student must be an integer")
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if v := c.Query("min_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("min_amount must be a number")
		}
		filter.MinAmount = &amount
	}
	if v := c.Query("max_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("max_amount must be a number")
		}
		filter.MaxAmount = &amount
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, errors.New("date has wrong format, use YYYY-MM-DD")
		}
		filter.Date = &date
	}
	return filter, nil
}

// FeeListHandler returns fee records, optionally narrowed by query filters
func FeeListHandler(fees *repository.Fees) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseFeeFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		list, err := fees.List(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fees"})
			return
		}
		out := make([]FeeResponse, 0, len(list))
		for _, f := range list {
			out = append(out, toFeeResponse(f))
		}
		c.JSON(http.StatusOK, out)
	}
}

// FeeCreateRequest carries a new payment
type FeeCreateRequest struct {
	Student     uint    `json:"student"`     // Paying user
	Amount      float64 `json:"amount"`      // Payment amount
	Description string  `json:"description"` // Optional free text
}

// FeeCreateHandler records a payment. The paid date is assigned server-side.
func FeeCreateHandler(fees *repository.Fees, users *repository.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FeeCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		errs := gin.H{}
		if req.Student == 0 {
			errs["student"] = "This field is required."
		}
		if req.Amount <= 0 {
			errs["amount"] = "Amount must be greater than zero."
		}
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, errs)
			return
		}
		user, err := users.ByID(c.Request.Context(), req.Student)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"student": "Invalid user reference."})
			return
		}
		fee := domain.FeeRecord{
			UserID:      user.ID,
			Amount:      req.Amount,
			Description: req.Description,
		}
		if err := fees.Create(c.Request.Context(), &fee); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": req.Student,
				"amount":  req.Amount,
				"error":   err.Error(),
			}).Error("Fee creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fee"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"fee_id":  fee.ID,
			"user_id": fee.UserID,
			"amount":  fee.Amount,
		}).Info("Fee recorded")
		invalidateSummaryCache(c, rdb)
		fee.User = user
		c.JSON(http.StatusCreated, toFeeResponse(fee))
	}
}

// FeeDetailHandler returns one fee record by id
func FeeDetailHandler(fees *repository.Fees) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := feeID(c)
		if !ok {
			return
		}
		fee, err := fees.ByID(c.Request.Context(), id)
		if err != nil {
			feeLookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, toFeeResponse(fee))
	}
}

// FeeUpdateHandler updates the student, amount and description of a fee record
func FeeUpdateHandler(fees *repository.Fees, users *repository.Users, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := feeID(c)
		if !ok {
			return
		}
		fee, err := fees.ByID(c.Request.Context(), id)
		if err != nil {
			feeLookupError(c, err)
			return
		}
		var req FeeCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Student == 0 || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Student and positive amount required"})
			return
		}
		user, err := users.ByID(c.Request.Context(), req.Student)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"student": "Invalid user reference."})
			return
		}
		fee.UserID = user.ID
		fee.Amount = req.Amount
		fee.Description = req.Description
		if err := fees.Update(c.Request.Context(), &fee); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fee"})
			return
		}
		invalidateSummaryCache(c, rdb)
		fee.User = user
		c.JSON(http.StatusOK, toFeeResponse(fee))
	}
}

// FeeDeleteHandler removes a fee record
func FeeDeleteHandler(fees *repository.Fees, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := feeID(c)
		if !ok {
			return
		}
		if err := fees.Delete(c.Request.Context(), id); err != nil {
			feeLookupError(c, err)
			return
		}
		invalidateSummaryCache(c, rdb)
		c.Status(http.StatusNoContent)
	}
}

// FeeSummaryHandler sums one user's payments, optionally bounded by an
// inclusive start/end date range. Zero totals come back when nothing matches.
func FeeSummaryHandler(fees *repository.Fees) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := feeID(c)
		if !ok {
			return
		}
		var start, end *time.Time
		if v := c.Query("start"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "start has wrong format, use YYYY-MM-DD"})
				return
			}
			start = &t
		}
		if v := c.Query("end"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "end has wrong format, use YYYY-MM-DD"})
				return
			}
			end = &t
		}
		summary, err := fees.SummaryForUser(c.Request.Context(), id, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"student_id":     id,
			"total_paid":     summary.TotalPaid,
			"total_payments": summary.TotalPayments,
		})
	}
}

// overallSummaryResponse is the cached shape of the overall aggregation
type overallSummaryResponse struct {
	TotalAmountReceived   float64 `json:"total_amount_received"`
	TotalNumberOfPayments int64   `json:"total_number_of_payments"`
}

// OverallFeeSummaryHandler aggregates every payment on record. The result is
// cached in Redis and invalidated whenever a fee record changes.
func OverallFeeSummaryHandler(fees *repository.Fees, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if rdb != nil {
			var cached overallSummaryResponse
			if hit, err := utils.GetCache(ctx, rdb, overallSummaryKey, &cached); err == nil && hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		summary, err := fees.OverallSummary(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
			return
		}
		resp := overallSummaryResponse{
			TotalAmountReceived:   summary.TotalPaid,
			TotalNumberOfPayments: summary.TotalPayments,
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, overallSummaryKey, resp, summaryCacheTTL)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// feeID reads the :id path parameter, writing a 404 on garbage input
func feeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return uint(id), true
}

// feeLookupError maps a repository error from a fee lookup to a response
func feeLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load fee"})
}

// invalidateSummaryCache drops the cached overall summary after a write
func invalidateSummaryCache(c *gin.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCache(c.Request.Context(), rdb, overallSummaryKey)
}
