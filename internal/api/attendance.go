package api

import (
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"time"     // Date parsing

	"school_system/internal/domain"     // Importing domain models
	"school_system/internal/repository" // Persistence layer

	"github.com/gin-gonic/gin" // Gin web framework
)

const dateLayout = "2006-01-02" // Wire format for day-granularity dates

// StudentResponse is the transport shape of an enrollment record
type StudentResponse struct {
	ID           uint   `json:"id"`
	User         uint   `json:"user"`
	EnrolledDate string `json:"enrolled_date"`
}

func toStudentResponse(s domain.Student) StudentResponse {
	return StudentResponse{
		ID:           s.ID,
		User:         s.UserID,
		EnrolledDate: s.EnrolledDate.Format(dateLayout),
	}
}

// AttendanceResponse is the transport shape of a marking event, with the
// student's display name joined in
type AttendanceResponse struct {
	ID          uint   `json:"id"`
	Student     uint   `json:"student"`
	StudentName string `json:"student_name"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

func toAttendanceResponse(a domain.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          a.ID,
		Student:     a.StudentID,
		StudentName: a.Student.User.FullName(),
		Date:        a.Date.Format(dateLayout),
		Status:      a.Status,
	}
}

// StudentListHandler returns every enrolled student
func StudentListHandler(students *repository.Students) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := students.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list students"})
			return
		}
		out := make([]StudentResponse, 0, len(list))
		for _, s := range list {
			out = append(out, toStudentResponse(s))
		}
		c.JSON(http.StatusOK, out)
	}
}

// StudentCreateRequest carries the enrollment payload
type StudentCreateRequest struct {
	User uint `json:"user" binding:"required"` // Account to enroll
}

// StudentCreateHandler enrolls a user as a student
func StudentCreateHandler(students *repository.Students, users *repository.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StudentCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"user": "This field is required."})
			return
		}
		// The referenced account must exist before enrollment
		if _, err := users.ByID(c.Request.Context(), req.User); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"user": "Invalid user reference."})
			return
		}
		student := domain.Student{UserID: req.User}
		if err := students.Create(c.Request.Context(), &student); err != nil {
			if errors.Is(err, repository.ErrStudentExists) {
				c.JSON(http.StatusBadRequest, gin.H{"user": "student with this user already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
			return
		}
		c.JSON(http.StatusCreated, toStudentResponse(student))
	}
}

// AttendanceListHandler returns every attendance record
func AttendanceListHandler(attendance *repository.Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := attendance.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list attendance"})
			return
		}
		out := make([]AttendanceResponse, 0, len(list))
		for _, a := range list {
			out = append(out, toAttendanceResponse(a))
		}
		c.JSON(http.StatusOK, out)
	}
}

// AttendanceCreateRequest carries one marking event
type AttendanceCreateRequest struct {
	Student uint   `json:"student"` // Student being marked
	Date    string `json:"date"`    // Day, YYYY-MM-DD
	Status  string `json:"status"`  // present or absent
}

// AttendanceCreateHandler stores one marking event
func AttendanceCreateHandler(attendance *repository.Attendance, students *repository.Students) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AttendanceCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		errs := gin.H{}
		if req.Student == 0 {
			errs["student"] = "This field is required."
		}
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			errs["date"] = "Date has wrong format. Use YYYY-MM-DD."
		}
		if !domain.ValidStatus(req.Status) {
			errs["status"] = "Status must be present or absent."
		}
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, errs)
			return
		}
		// The marked student must exist
		student, err := students.ByID(c.Request.Context(), req.Student)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"student": "Invalid student reference."})
			return
		}
		record := domain.Attendance{
			StudentID: student.ID,
			Date:      date,
			Status:    req.Status,
		}
		if err := attendance.Create(c.Request.Context(), &record); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attendance"})
			return
		}
		record.Student = student
		c.JSON(http.StatusCreated, toAttendanceResponse(record))
	}
}
