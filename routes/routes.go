package routes

import (
	"recruit-reminder-backend/config"
	"recruit-reminder-backend/controllers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Schedules   *controllers.ScheduleController
	Messages    *controllers.MessageController
	Jobs        *controllers.JobController
	CORSOrigins []string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(deps.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = deps.CORSOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	r.Use(config.PerformanceLogger())

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		schedules := api.Group("/schedules")
		{
			schedules.POST("", deps.Schedules.CreateSchedule)
			schedules.GET("/:messagingId", deps.Schedules.GetSchedules)
		}
		api.GET("/schedule-types", controllers.GetScheduleTypes)

		api.POST("/messages", deps.Messages.HandleMessage)

		jobs := api.Group("/jobs")
		{
			jobs.GET("", deps.Jobs.ListJobs)
			jobs.POST("/:name", deps.Jobs.RunJob)
		}
	}

	return r
}
