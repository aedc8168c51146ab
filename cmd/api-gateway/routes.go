package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/handler"
	"github.com/noah-isme/ormawa-api/internal/middleware"
	"github.com/noah-isme/ormawa-api/internal/service"
	"github.com/noah-isme/ormawa-api/pkg/config"
	"github.com/noah-isme/ormawa-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ormawa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ormawa-api/pkg/middleware/requestid"
)

type routerDeps struct {
	identity     middleware.TokenValidator
	metrics      *service.MetricsService
	workItems    *handler.WorkItemHandler
	tasks        *handler.TaskHandler
	logs         *handler.ActivityLogHandler
	participants *handler.ParticipantHandler
	designs      *handler.DesignRequestHandler
	siteConfig   *handler.SiteConfigHandler
	media        *handler.MediaHandler
	brandKit     *handler.BrandKitHandler
	campaigns    *handler.CampaignHandler
	files        *handler.FileHandler
	ops          *handler.MetricsHandler
	// publicDirs maps bucket names to directories served as-is under /files.
	publicDirs map[string]string
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.ops.Health)
	r.GET("/ready", d.ops.Ready)
	r.GET("/metrics", d.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	for bucket, dir := range d.publicDirs {
		r.Static("/files/"+bucket, dir)
	}
	r.GET("/files/download", d.files.Download)

	api := r.Group(cfg.APIPrefix)
	public := api.Group("/public", middleware.OptionalJWT(d.identity))
	public.GET("/pages/:section", d.siteConfig.Page)

	auth := api.Group("")
	auth.Use(middleware.JWT(d.identity))
	audit := func(action, resource string) gin.HandlerFunc { return middleware.Audit(logr, action, resource) }

	auth.GET("/metrics/summary", middleware.RequireElevated(), d.ops.Summary)

	workItems := auth.Group("/work-items")
	workItems.GET("", d.workItems.List)
	workItems.POST("", audit("create", "work_item"), d.workItems.Create)
	workItems.GET("/:id", d.workItems.Get)
	workItems.PATCH("/:id", audit("update", "work_item"), d.workItems.Update)
	workItems.PATCH("/:id/status", audit("set_status", "work_item"), d.workItems.SetStatus)
	workItems.DELETE("/:id", audit("delete", "work_item"), d.workItems.Delete)
	workItems.GET("/:id/tasks", d.tasks.List)
	workItems.POST("/:id/tasks", audit("create", "task"), d.tasks.Add)
	workItems.GET("/:id/logs", d.logs.List)
	workItems.POST("/:id/logs", audit("create", "activity_log"), d.logs.Append)
	workItems.GET("/:id/participants", d.participants.List)
	workItems.POST("/:id/participants", audit("create", "participant"), d.participants.Add)

	auth.PATCH("/tasks/:id/toggle", audit("toggle", "task"), d.tasks.Toggle)
	auth.DELETE("/tasks/:id", audit("delete", "task"), d.tasks.Delete)
	auth.DELETE("/participants/:id", audit("delete", "participant"), d.participants.Remove)

	auth.GET("/boards/:kind", d.workItems.Board)
	auth.POST("/boards/:kind/move", audit("move", "work_item"), d.workItems.Move)
	auth.GET("/reports/work-items", d.workItems.Export)

	designs := auth.Group("/design-requests")
	designs.GET("", d.designs.List)
	designs.POST("", audit("create", "design_request"), d.designs.Create)
	designs.GET("/:id", d.designs.Get)
	designs.PATCH("/:id", audit("update", "design_request"), d.designs.Update)
	designs.PATCH("/:id/assign", audit("assign", "design_request"), d.designs.Assign)
	designs.PATCH("/:id/status", audit("set_status", "design_request"), d.designs.SetStatus)
	designs.POST("/:id/comments", audit("comment", "design_request"), d.designs.AddComment)
	designs.PUT("/:id/deliverable", audit("deliver", "design_request"), d.designs.SetDeliverable)
	designs.POST("/:id/attachment", audit("attach", "design_request"), d.designs.UploadAttachment)

	cms := auth.Group("/cms", middleware.RequireElevated())
	cms.GET("/sections", d.siteConfig.Sections)
	cms.GET("/sections/:section", d.siteConfig.Section)
	cms.GET("/sections/:section/:key", d.siteConfig.Entry)
	cms.PUT("/sections/:section/:key", audit("update", "site_config"), d.siteConfig.Set)
	cms.PUT("/batch", audit("batch_update", "site_config"), d.siteConfig.BatchSet)

	media := auth.Group("/media")
	media.GET("", d.media.List)
	media.POST("", audit("upload", "media"), d.media.Upload)
	media.GET("/:id", d.media.Get)
	media.PATCH("/:id", audit("update", "media"), d.media.Update)
	media.DELETE("/:id", audit("delete", "media"), d.media.Delete)

	brandKit := auth.Group("/brand-kit")
	brandKit.GET("", d.brandKit.List)
	brandKit.GET("/:id", d.brandKit.Get)
	brandKit.GET("/:id/download", d.brandKit.Download)
	brandKit.POST("", middleware.RequireElevated(), audit("create", "brand_kit"), d.brandKit.Create)
	brandKit.PATCH("/:id", middleware.RequireElevated(), audit("update", "brand_kit"), d.brandKit.Update)
	brandKit.PUT("/:id/file", middleware.RequireElevated(), audit("replace_file", "brand_kit"), d.brandKit.ReplaceFile)
	brandKit.DELETE("/:id", middleware.RequireElevated(), audit("delete", "brand_kit"), d.brandKit.Delete)

	campaigns := auth.Group("/campaigns")
	campaigns.GET("", d.campaigns.List)
	campaigns.POST("", audit("create", "campaign"), d.campaigns.Create)
	campaigns.GET("/:id", d.campaigns.Get)
	campaigns.PATCH("/:id", audit("update", "campaign"), d.campaigns.Update)
	campaigns.DELETE("/:id", audit("delete", "campaign"), d.campaigns.Delete)

	return r
}
