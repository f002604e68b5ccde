package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted by RegisterRoutes.
type Handlers struct {
	Students    *StudentHandler
	Shop        *ShopHandler
	Prizes      *PrizeHandler
	Classes     *ClassHandler
	Schedule    *ScheduleHandler
	Attachments *AttachmentHandler
	Data        *DataHandler
	Coins       *CoinHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts every API route on api, normally the API_PREFIX group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.PUT("/:id/lessons/:date", h.Students.RecordLesson)
	students.GET("/:id/ledger", h.Students.Ledger)
	students.GET("/:id/purchases", h.Students.Purchases)
	students.GET("/:id/purchases/export", h.Students.ExportPurchases)
	students.POST("/:id/purchases/:purchaseId/refund", h.Shop.Refund)
	api.GET("/class-stats", h.Students.ClassStats)

	api.POST("/shop/purchases", h.Shop.Purchase)

	prizes := api.Group("/prizes")
	prizes.GET("", h.Prizes.List)
	prizes.POST("", h.Prizes.Create)
	prizes.GET("/:id", h.Prizes.Get)
	prizes.PUT("/:id", h.Prizes.Update)
	prizes.DELETE("/:id", h.Prizes.Delete)
	prizes.POST("/:id/archive", h.Prizes.Archive)
	prizes.POST("/:id/restore", h.Prizes.Restore)

	classes := api.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.PUT("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)
	classes.POST("/:id/archive", h.Classes.Archive)
	classes.POST("/:id/restore", h.Classes.Restore)
	classes.POST("/:id/subgroups", h.Classes.AddSubgroup)
	classes.PUT("/:id/subgroups/:subgroupId", h.Classes.RenameSubgroup)
	classes.DELETE("/:id/subgroups/:subgroupId", h.Classes.DeleteSubgroup)

	lessons := api.Group("/lessons")
	lessons.GET("", h.Schedule.List)
	lessons.POST("", h.Schedule.Create)
	lessons.GET("/:id", h.Schedule.Get)
	lessons.PUT("/:id", h.Schedule.Update)
	lessons.DELETE("/:id", h.Schedule.Delete)
	lessons.POST("/:id/files", h.Attachments.Upload)
	lessons.DELETE("/:id/files/:fileId", h.Attachments.Detach)
	lessons.GET("/:id/files/:fileId/link", h.Attachments.Link)
	api.GET("/files/:token", h.Attachments.Download)

	data := api.Group("/data")
	data.GET("/export", h.Data.Export)
	data.POST("/import", h.Data.Import)
	data.POST("/restore", h.Data.Restore)
	data.GET("/backup", h.Data.BackupInfo)
	data.POST("/clear", h.Data.Clear)
	data.GET("/stats", h.Data.Stats)

	coins := api.Group("/coins")
	coins.GET("/denominations", h.Coins.Denominations)
	coins.POST("/print", h.Coins.Print)
	coins.GET("/history", h.Coins.History)
	coins.DELETE("/history", h.Coins.ClearHistory)
	coins.DELETE("/history/:id", h.Coins.DeleteRecord)
	coins.GET("/next-batch", h.Coins.NextBatch)

	api.GET("/system/metrics", h.Metrics.System)
}
