package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API v1 routes on r
func RegisterRoutes(r gin.IRouter, analysis *AnalysisHandler, classify *ClassifyHandler) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/analyze", analysis.Analyze)
		v1.GET("/reports/:id", analysis.GetReport)

		if classify != nil {
			v1.POST("/classify", classify.ClassifyBatch)
			v1.POST("/classify/text", classify.ClassifyText)
		}
	}
}
