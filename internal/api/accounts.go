package api

import (
	"context"  // Context for blacklist operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"regexp"   // Email shape validation
	"time"     // Token lifetimes

	"school_system/internal/domain"     // Importing domain models
	"school_system/internal/repository" // Persistence layer
	"school_system/internal/utils"      // Token utilities

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// TokenBlacklist records revoked refresh tokens. Satisfied by utils.Blacklist.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RegisterRequest carries the registration payload
type RegisterRequest struct {
	Email     string `json:"email"`      // Login email, unique
	FirstName string `json:"first_name"` // First name
	LastName  string `json:"last_name"`  // Last name
	Password  string `json:"password"`   // Plaintext password, hashed before storage
	Role      string `json:"role"`       // Optional, defaults to student
}

// LoginRequest carries the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RefreshRequest carries a refresh token, for logout and token exchange
type RefreshRequest struct {
	Refresh string `json:"refresh"` // Refresh token string
}

// ProfileResponse is the transport shape of a user account
type ProfileResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// toProfileResponse maps a stored user to its transport shape
func toProfileResponse(user domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateRegistration collects per-field problems with a registration request
func validateRegistration(req RegisterRequest) gin.H {
	errs := gin.H{}
	if req.Email == "" {
		errs["email"] = "This field is required."
	} else if !emailPattern.MatchString(req.Email) {
		errs["email"] = "Enter a valid email address."
	}
	if req.FirstName == "" {
		errs["first_name"] = "This field is required."
	}
	if req.LastName == "" {
		errs["last_name"] = "This field is required."
	}
	if req.Password == "" {
		errs["password"] = "This field is required."
	} else if len(req.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if req.Role != "" && !domain.ValidRole(req.Role) {
		errs["role"] = "Role must be one of admin, teacher, student, parent."
	}
	return errs
}

// RegisterHandler creates a new user account
func RegisterHandler(users *repository.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate all fields up front so the response names each problem
		if errs := validateRegistration(req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, errs)
			return
		}
		// Hash the password before it touches the database
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		role := req.Role
		if role == "" {
			role = domain.RoleStudent // Fallback default
		}
		user := domain.User{
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         role,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := users.Create(c.Request.Context(), &user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				c.JSON(http.StatusBadRequest, gin.H{"email": "user with this email already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler verifies credentials and issues an access/refresh token pair
func LoginHandler(users *repository.Users, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := users.ByEmail(c.Request.Context(), req.Email)
		if err != nil {
			// Same response whether the account is missing or the password is
			// wrong, so login does not leak which emails exist
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		pair, err := utils.GenerateTokenPair(user.ID, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"role":    user.Role,
		}).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{
			"access":  pair.AccessToken,
			"refresh": pair.RefreshToken,
			"user":    toProfileResponse(user),
		})
	}
}

// LogoutHandler blacklists the presented refresh token until its natural expiry
func LogoutHandler(jwtSecret string, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		claims, err := utils.ParseRefreshToken(req.Refresh, jwtSecret)
		if err != nil {
			// Malformed, expired and wrong-type tokens all end the same way
			// for the caller, but an expired token is not worth logging
			if errors.Is(err, utils.ErrMalformedToken) {
				logrus.Warn("Logout with malformed refresh token")
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		if err := blacklist.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
			return
		}
		c.JSON(http.StatusResetContent, gin.H{"detail": "Logout successful"})
	}
}

// RefreshHandler exchanges a live refresh token for a new access token
func RefreshHandler(users *repository.Users, jwtSecret string, accessTTL time.Duration, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token required"})
			return
		}
		claims, err := utils.ParseRefreshToken(req.Refresh, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Re-read the account so a deactivated user cannot keep refreshing
		user, err := users.ByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		access, err := utils.GenerateAccessToken(user.ID, user.Role, jwtSecret, accessTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access})
	}
}

// ProfileHandler returns the authenticated caller's own record
func ProfileHandler(users *repository.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Set by JWTAuthMiddleware
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.ByID(c.Request.Context(), userID.(uint))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, toProfileResponse(user))
	}
}

// UpdateProfileRequest carries the caller-editable profile fields
type UpdateProfileRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateProfileHandler mutates the caller's own record. Identity comes from
// the token, never from a request parameter.
func UpdateProfileHandler(users *repository.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := users.ByID(c.Request.Context(), userID.(uint))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Absent fields keep their current value
		if req.Email != "" {
			if !emailPattern.MatchString(req.Email) {
				c.JSON(http.StatusBadRequest, gin.H{"email": "Enter a valid email address."})
				return
			}
			user.Email = req.Email
		}
		if req.FirstName != "" {
			user.FirstName = req.FirstName
		}
		if req.LastName != "" {
			user.LastName = req.LastName
		}
		if err := users.UpdateProfile(c.Request.Context(), &user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				c.JSON(http.StatusBadRequest, gin.H{"email": "user with this email already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, toProfileResponse(user))
	}
}

// WelcomeHandler returns the greeting for a role-gated route. The role check
// itself lives in middleware.RequireRole.
func WelcomeHandler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}
