package api

import (
	"time"

	"school_system/internal/domain"
	"school_system/internal/middleware"
	"school_system/internal/repository"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps holds everything the route handlers need.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client // May be nil in tests; summary caching is skipped
	Blacklist  TokenBlacklist
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Routes registers every endpoint on the router.
func Routes(r *gin.Engine, d Deps) {
	users := repository.NewUsers(d.DB)
	students := repository.NewStudents(d.DB)
	attendance := repository.NewAttendance(d.DB)
	fees := repository.NewFees(d.DB)

	authRequired := middleware.JWTAuthMiddleware(d.JWTSecret)

	// Accounts: registration, sessions and the caller's own profile
	accounts := r.Group("/accounts")
	accounts.POST("/register/", RegisterHandler(users))
	accounts.POST("/login/", LoginHandler(users, d.JWTSecret, d.AccessTTL, d.RefreshTTL))
	accounts.POST("/token/refresh/", RefreshHandler(users, d.JWTSecret, d.AccessTTL, d.Blacklist))
	accounts.POST("/logout/", authRequired, LogoutHandler(d.JWTSecret, d.Blacklist))
	accounts.GET("/profile/", authRequired, ProfileHandler(users))
	accounts.PUT("/profile/", authRequired, UpdateProfileHandler(users))

	// Role gates: authenticated AND exact role, no hierarchy
	accounts.GET("/admin/", authRequired, middleware.RequireRole(d.DB, domain.RoleAdmin), WelcomeHandler("Welcome Admin!"))
	accounts.GET("/teacher/", authRequired, middleware.RequireRole(d.DB, domain.RoleTeacher), WelcomeHandler("Welcome Teacher!"))
	accounts.GET("/student/", authRequired, middleware.RequireRole(d.DB, domain.RoleStudent), WelcomeHandler("Welcome Student!"))
	accounts.GET("/parent/", authRequired, middleware.RequireRole(d.DB, domain.RoleParent), WelcomeHandler("Welcome Parent!"))

	// Attendance: roster and daily marking
	att := r.Group("/attendance", authRequired)
	att.GET("/students/", StudentListHandler(students))
	att.POST("/students/", StudentCreateHandler(students, users))
	att.GET("/attendance/", AttendanceListHandler(attendance))
	att.POST("/attendance/", AttendanceCreateHandler(attendance, students))

	// Payments: fee records, filters and summaries
	pay := r.Group("/payments", authRequired)
	pay.GET("/fees/", FeeListHandler(fees))
	pay.POST("/fees/", FeeCreateHandler(fees, users, d.Redis))
	pay.GET("/fees/summary/overall/", OverallFeeSummaryHandler(fees, d.Redis))
	pay.GET("/fees/:id/", FeeDetailHandler(fees))
	pay.PUT("/fees/:id/", FeeUpdateHandler(fees, users, d.Redis))
	pay.DELETE("/fees/:id/", FeeDeleteHandler(fees, d.Redis))
	pay.GET("/fees/:id/summary/", FeeSummaryHandler(fees))
}
