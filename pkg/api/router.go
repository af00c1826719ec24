package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/middleware"
	"profit-calculator/pkg/web"
)

// NewRouter registers every route on a new gin engine.
func NewRouter(handlers *Handlers, renderer *web.Renderer, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.SetHTMLTemplate(renderer.Templates())

	router.GET("/", handlers.ShowCalculator)
	router.POST("/calculate", handlers.Calculate)
	router.POST("/leads", handlers.SubmitLead)
	router.GET("/report.pdf", handlers.DownloadReport)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.CORS())
	{
		apiGroup.POST("/estimate", handlers.Estimate)
		apiGroup.POST("/leads", handlers.CreateLead)
		apiGroup.PUT("/leads/:contactId", handlers.UpdateLead)
		apiGroup.OPTIONS("/*path", func(c *gin.Context) {})
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
