package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Course     *CourseHandler
	Schedule   *ScheduleHandler
	Session    *SessionHandler
	Attendance *AttendanceHandler
	Enrollment *EnrollmentHandler
	Messaging  *MessagingHandler
	Grade      *GradeHandler
	Payment    *PaymentHandler
	Dashboard  *DashboardHandler
	Realtime   *RealtimeHandler
	Metrics    *MetricsHandler
}

// Register mounts all API routes under the given group.
func Register(api *gin.RouterGroup, h Handlers, authService *service.AuthService) {
	requireAuth := middleware.JWT(authService)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", requireAuth, h.Auth.Logout)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}

	courses := api.Group("/courses", requireAuth)
	{
		courses.GET("", h.Course.List)
		courses.GET("/picker", middleware.RequireRoles(models.RoleTeacher), h.Course.Picker)
		courses.GET("/:id", h.Course.Get)
		courses.POST("", middleware.RequireRoles(models.RoleAdmin), h.Course.Create)
		courses.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Course.Update)
		courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Course.Delete)

		courses.GET("/:id/schedules", h.Schedule.ListByCourse)
		courses.GET("/:id/enrollments", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), h.Enrollment.ListByCourse)
		courses.POST("/:id/enrollments", middleware.RequireRoles(models.RoleAdmin), h.Enrollment.Enroll)
		courses.GET("/:id/grades", h.Grade.List)
		courses.POST("/:id/grades", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), h.Grade.Record)
	}

	schedules := api.Group("/schedules", requireAuth)
	{
		schedules.GET("", h.Schedule.List)
		schedules.POST("", middleware.RequireRoles(models.RoleAdmin), h.Schedule.Create)
		schedules.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Schedule.Update)
		schedules.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Schedule.Delete)
	}

	sessions := api.Group("/sessions", requireAuth)
	{
		sessions.GET("", h.Session.List)
		sessions.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), h.Session.Create)
		sessions.POST("/detect", middleware.RequireRoles(models.RoleTeacher), h.Session.Detect)
		sessions.GET("/:id", h.Session.Get)

		teacherOrAdmin := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
		sessions.GET("/:id/roster", teacherOrAdmin, h.Attendance.Roster)
		sessions.POST("/:id/attendance", teacherOrAdmin, h.Attendance.Mark)
		sessions.POST("/:id/attendance/bulk", teacherOrAdmin, h.Attendance.BulkMark)
		sessions.GET("/:id/export", teacherOrAdmin, h.Attendance.Export)
	}

	conversations := api.Group("/conversations", requireAuth)
	{
		conversations.GET("", h.Messaging.ListConversations)
		conversations.POST("", h.Messaging.StartConversation)
		conversations.GET("/:id/messages", h.Messaging.ListMessages)
		conversations.POST("/:id/messages", h.Messaging.SendMessage)
	}

	api.DELETE("/enrollments/:id", requireAuth, middleware.RequireRoles(models.RoleAdmin), h.Enrollment.Drop)

	payments := api.Group("/payments", requireAuth)
	{
		payments.GET("", h.Payment.List)
		payments.POST("", middleware.RequireRoles(models.RoleAdmin), h.Payment.Create)
		payments.POST("/:id/pay", middleware.RequireRoles(models.RoleAdmin), h.Payment.MarkPaid)
	}

	dashboard := api.Group("/dashboard", requireAuth, middleware.RequireRoles(models.RoleAdmin))
	{
		dashboard.GET("/summary", h.Dashboard.Summary)
		dashboard.POST("/refresh", h.Dashboard.Refresh)
	}

	api.GET("/ws", requireAuth, h.Realtime.Connect)
}
