package routes

import (
	"workshop_tool_tracker/app"
	"workshop_tool_tracker/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	toolCtl := controllers.NewToolController(s)
	borrowCtl := controllers.NewBorrowController(s)
	noteCtl := controllers.NewNotificationController(s)

	r.GET("/healthz", s.Healthz)
	r.GET("/hello", s.Hello)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// ------------------------------
	// 工具
	// ------------------------------
	tools := api.Group("/tools")
	{
		tools.GET("", toolCtl.ListTools)
		tools.POST("", toolCtl.CreateTool)
		tools.GET("/qr/:code", toolCtl.GetToolByCode)
		tools.GET("/:id", toolCtl.GetTool)
		tools.PUT("/:id", toolCtl.UpdateTool)
		tools.DELETE("/:id", toolCtl.DeleteTool)
		tools.DELETE("/:id/force", toolCtl.ForceDeleteTool)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	api.POST("/borrow", borrowCtl.Borrow)
	api.POST("/return", borrowCtl.Return)
	records := api.Group("/borrow-records")
	{
		records.GET("", borrowCtl.ListRecords)
		records.POST("", borrowCtl.Borrow)
		records.GET("/active", borrowCtl.ListActiveRecords)
		records.POST("/return", borrowCtl.Return)
		records.POST("/overdue", borrowCtl.NotifyOverdue)
	}

	// ------------------------------
	// 通知
	// ------------------------------
	notes := api.Group("/notifications")
	{
		notes.GET("", noteCtl.ListNotifications)
		notes.PATCH("/read-all", noteCtl.MarkAllRead)
		notes.PUT("/read-all", noteCtl.MarkAllRead)
		notes.PATCH("/:id/read", noteCtl.MarkRead)
		notes.PUT("/:id/read", noteCtl.MarkRead)
	}
}
