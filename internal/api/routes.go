package api

import (
	"gradepulse/internal/fields"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NewRouter builds the engine with middleware, custom validators and routes.
func NewRouter(handler *Handler) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := fields.RegisterValidations(v); err != nil {
			return nil, err
		}
	}

	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware())
	router.Use(LoggingMiddleware())
	router.MaxMultipartMemory = handler.cfg.Import.MaxUploadBytes

	SetupRoutes(router, handler)
	return router, nil
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)
	router.POST("/webhook/whatsapp", handler.WhatsAppWebhook)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/template.xlsx", handler.DownloadTemplate)

		imports := v1.Group("/imports")
		imports.POST("", handler.UploadRoster)
		imports.POST("/confirm", handler.ConfirmImport)
		imports.GET("/:upload_id", handler.GetUploadPreview)

		fieldRoutes := v1.Group("/fields")
		fieldRoutes.GET("", handler.ListFields)
		fieldRoutes.POST("", handler.CreateField)
		fieldRoutes.POST("/reorder", handler.ReorderFields)
		fieldRoutes.PUT("/:id", handler.UpdateField)
		fieldRoutes.DELETE("/:id", handler.DeleteField)
		fieldRoutes.POST("/:id/toggle", handler.ToggleField)

		studentRoutes := v1.Group("/students")
		studentRoutes.GET("", handler.ListStudents)
		studentRoutes.POST("", handler.CreateStudent)
		studentRoutes.GET("/filters", handler.StudentFilters)
		studentRoutes.GET("/:student_id", handler.GetStudent)
		studentRoutes.PUT("/:student_id", handler.UpdateStudent)
		studentRoutes.DELETE("/:student_id", handler.DeleteStudent)

		v1.GET("/class-sections", handler.ListClassSections)

		v1.POST("/attendance", handler.SubmitAttendance)
		v1.GET("/attendance/class/:class_section_id", handler.ClassAttendance)
		v1.GET("/attendance/alerts", handler.AttendanceAlerts)
		v1.POST("/attendance/alerts/send", handler.SendAttendanceAlerts)
	}
}
