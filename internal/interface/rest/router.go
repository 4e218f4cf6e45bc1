package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all routes, the prometheus endpoint and static hosting of
// acquired documents
func NewRouter(handler *Handler, uploadsDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)

		passengers := api.Group("/passengers")
		{
			passengers.GET("", handler.ListPassengers)
			passengers.GET("/:id", handler.GetPassenger)
			passengers.POST("/:id/download", handler.DownloadInvoice)
			passengers.POST("/:id/parse", handler.ParseInvoice)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", handler.ListInvoices)
			invoices.GET("/summary", handler.GetSummary)
			invoices.GET("/high-value", handler.GetHighValue)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", uploadsDir)

	return router
}
