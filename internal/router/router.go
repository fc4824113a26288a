package router

import (
	"net/http"

	"docsynth/internal/handler"
	"docsynth/internal/logging"
	"docsynth/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(svc *service.ServiceContext) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())

	// CORS
	corsCfg := cors.DefaultConfig()
	origins := svc.Config.Server.AllowOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Accept", "X-Requested-With")
	r.Use(cors.New(corsCfg))

	// 初始化handlers
	guideHandler := handler.NewGuideHandler(
		svc.GuideService,
		svc.Config.Generator.RequestTimeout,
		svc.Config.Generator.MaxUploadBytes,
	)
	historyHandler := handler.NewHistoryHandler()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 生成接口与前端保持一致，不在 /api 下
	r.POST("/generate_guide", guideHandler.GenerateGuide)

	api := r.Group("/api")
	{
		api.POST("/generate_guide", guideHandler.GenerateGuide)

		history := api.Group("/history")
		{
			history.GET("", historyHandler.ListHistory)
			history.GET("/stats", historyHandler.Stats)
		}

		guides := api.Group("/guides")
		{
			guides.GET("/:id", guideHandler.GetGuide)
		}
	}

	return r
}
