package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/migrations"
	"taskboard/internal/notify"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
}

// handlers groups everything the router mounts.
type handlers struct {
	users       *handler.UserHandler
	tasks       *handler.TaskHandler
	comments    *handler.CommentHandler
	columns     *handler.ColumnHandler
	labels      *handler.LabelHandler
	teams       *handler.TeamHandler
	invitations *handler.InvitationHandler
	reports     *handler.ReportHandler
}

func Init(cfg *config.Config) (*Server, error) {
	logger := log.StandardLogger()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.MigrationURL()); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
	}

	// Setup GORM
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	var (
		redisClient *redis.Client
		boardCache  service.BoardCache
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("❌ invalid REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		bc := cache.NewBoardCache(redisClient, cfg.BoardCacheTTL)
		if err := cache.RegisterInvalidation(db, bc); err != nil {
			return nil, fmt.Errorf("❌ failed to register cache invalidation: %w", err)
		}
		boardCache = bc
		log.Println("✅ Board cache enabled")
	}

	var notifier notify.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Warn("⚠️  SMTP_HOST is empty, emails will only be logged")
		notifier = notify.NewLogNotifier(logger)
	}

	// Initialize repositories
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	policy, err := service.NewVisibilityPolicy(cfg.VisibilityPolicy, taskRepo, teamRepo, labelRepo)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	log.WithField("policy", policy.Name()).Info("✅ Visibility policy selected")

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	taskService := service.NewTaskService(service.TaskServiceDeps{
		Tx:       tx,
		Tasks:    taskRepo,
		Columns:  columnRepo,
		Teams:    teamRepo,
		Labels:   labelRepo,
		Users:    userRepo,
		Comments: commentRepo,
		History:  service.NewHistoryLedger(historyRepo),
		Policy:   policy,
		Notifier: notifier,
		LogoURL:  cfg.LogoURL,
		Logger:   logger,
	})
	boardService := service.NewBoardService(policy, columnRepo, boardCache)
	catalogService := service.NewCatalogService(columnRepo, labelRepo, teamRepo, userRepo)
	accountService := service.NewAccountService(userRepo, tokens)
	invitationService := service.NewInvitationService(tx, invitationRepo, teamRepo, userRepo, notifier, cfg.BaseURL, logger)
	reportService := service.NewReportService(policy, columnRepo, teamRepo, labelRepo, userRepo, cfg.CompletedColumn)

	// Initialize handlers
	h := handlers{
		users:       handler.NewUserHandler(accountService),
		tasks:       handler.NewTaskHandler(taskService, boardService),
		comments:    handler.NewCommentHandler(taskService),
		columns:     handler.NewColumnHandler(catalogService),
		labels:      handler.NewLabelHandler(catalogService),
		teams:       handler.NewTeamHandler(catalogService),
		invitations: handler.NewInvitationHandler(invitationService),
		reports:     handler.NewReportHandler(reportService),
	}

	return &Server{
		Engine: newRouter(h, tokens, logger),
		DB:     db,
		Redis:  redisClient,
		Config: cfg,
	}, nil
}

func newRouter(h handlers, tokens *auth.TokenManager, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	// Public routes
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/register", h.users.Register)
	r.POST("/login", h.users.Login)
	r.POST("/token/refresh", h.users.Refresh)
	r.POST("/accept-invitation/:id", h.invitations.Accept)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// Task routes
		authorized.GET("/tasks", h.tasks.Board)
		authorized.POST("/tasks", h.tasks.Create)
		authorized.GET("/tasks/choices", h.reports.Choices)
		authorized.POST("/tasks/reorder", h.tasks.Reorder)
		authorized.GET("/tasks/:id", h.tasks.GetByID)
		authorized.PUT("/tasks/:id", h.tasks.Replace)
		authorized.PATCH("/tasks/:id", h.tasks.Patch)
		authorized.DELETE("/tasks/:id", h.tasks.Delete)
		authorized.PUT("/tasks/:id/assignees", h.tasks.ChangeAssignees)
		authorized.GET("/history", h.tasks.History)

		// Comment routes
		authorized.POST("/comments", h.comments.Create)
		authorized.GET("/comments", h.comments.List)
		authorized.GET("/comments/:id", h.comments.GetByID)
		authorized.DELETE("/comments/:id", h.comments.Delete)

		// Column routes
		authorized.GET("/columns", h.columns.GetAll)
		authorized.POST("/columns", h.columns.Create)
		authorized.PUT("/columns/:id", h.columns.Update)
		authorized.DELETE("/columns/:id", h.columns.Delete)

		// Label routes
		authorized.GET("/labels", h.labels.GetAll)
		authorized.POST("/labels", h.labels.Create)
		authorized.PUT("/labels/:id", h.labels.Update)
		authorized.DELETE("/labels/:id", h.labels.Delete)

		// Team and invitation routes
		authorized.GET("/teams", h.teams.GetAll)
		authorized.POST("/teams", h.teams.Create)
		authorized.GET("/invitations", h.invitations.GetAll)
		authorized.POST("/invitations", h.invitations.Create)

		// User routes
		authorized.GET("/users", h.users.GetAll)
		authorized.GET("/profile", h.users.Profile)
		authorized.PATCH("/profile", h.users.UpdateProfile)

		// Report routes
		authorized.GET("/statistics", h.reports.Statistics)
		authorized.GET("/gantt-chart", h.reports.Gantt)
		authorized.GET("/calendar", h.reports.Calendar)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.WithError(err).Warn("⚠️  Failed to close redis client")
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("✅ Server exited properly")
}
