package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crestlabs/crest/internal/config"
	"github.com/crestlabs/crest/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Pipeline  *service.PipelineService
	Stats     *service.StatsService
	Auth      *service.AuthService
	Scheduler *service.Scheduler
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	pipelineService := service.NewPipelineService(cfg, db, logger)
	statsService := service.NewStatsService(db, logger)
	authService := service.NewAuthService(logger, cfg.Approval.TOTPSecret)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, pipelineService, statsService)

	// Create router
	router := gin.New()

	srv := &Server{
		Config:    cfg,
		DB:        db,
		Router:    router,
		Logger:    logger,
		Pipeline:  pipelineService,
		Stats:     statsService,
		Auth:      authService,
		Scheduler: scheduler,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Approval-Code")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		ideation := api.Group("/ideation")
		{
			ideation.POST("/run", s.handleRunIdeation)
		}

		drafts := api.Group("/drafts")
		{
			drafts.POST("", s.handleCreateDraft)
			drafts.GET("", s.handleListDrafts)
			drafts.GET("/:id", s.handleGetDraft)
			drafts.GET("/:id/audit", s.handleDraftAudit)
			drafts.POST("/:id/poll", s.handlePollDraft)
			drafts.POST("/:id/quality", s.handleQualityGate)
			drafts.POST("/:id/approval", s.handleRequestApproval)
			drafts.POST("/:id/publish", s.handlePublish)
		}

		approval := api.Group("/approval")
		{
			approval.POST("/decision", s.Auth.Middleware(), s.handleDecision)
		}

		api.GET("/platforms", s.handlePlatforms)
		api.GET("/stats", s.handleStats)
		api.GET("/audit", s.handleRecentAudit)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
