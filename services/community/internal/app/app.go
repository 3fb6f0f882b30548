package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hobbyhub/pkg/cache"
	"hobbyhub/pkg/config"
	"hobbyhub/pkg/database"
	"hobbyhub/pkg/jwt"
	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/middleware"
	"hobbyhub/pkg/queue"
	"hobbyhub/pkg/s3"
	communityHTTP "hobbyhub/services/community/internal/controller/http"
	postCache "hobbyhub/services/community/internal/repo/cache"
	"hobbyhub/services/community/internal/repo/persistent"
	"hobbyhub/services/community/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "hobbyhub/services/community/docs" // Swagger docs
)

const (
	requestsPerMinute = 100
	shutdownTimeout   = 5 * time.Second
)

// Dependencies are the connected backends the router is built on.
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Storage   usecase.ObjectStorage
	Publisher usecase.EventPublisher
	JWT       *jwt.Service
}

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
	}, nil
}

// NewRouter wires repositories, use cases and handlers onto a gin engine.
func NewRouter(cfg *config.Config, log *logger.Logger, deps Dependencies) *gin.Engine {
	postRepo := persistent.NewPostRepository(deps.DB)
	commentRepo := persistent.NewCommentRepository(deps.DB)
	posts := postCache.NewPostCache(deps.Redis)
	images := usecase.NewImageStager(deps.Storage, cfg.MaxImageBytes)

	postUseCase := usecase.NewPostUseCase(postRepo, posts, images, deps.Publisher, log)
	commentUseCase := usecase.NewCommentUseCase(postRepo, commentRepo, deps.Publisher, log)

	postHandler := communityHTTP.NewPostHandler(postUseCase, images, log)
	commentHandler := communityHTTP.NewCommentHandler(commentUseCase, log)
	sessionHandler := communityHTTP.NewSessionHandler()

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxImageBytes + 1<<20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware(deps.JWT))
	api.Use(middleware.RateLimitMiddleware(deps.Redis, requestsPerMinute, time.Minute))
	{
		api.GET("/session", sessionHandler.GetSession)
		api.PUT("/session/theme", sessionHandler.SetTheme)

		api.GET("/posts", postHandler.ListPosts)
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/posts/:id/upvote", postHandler.UpvotePost)

		api.GET("/posts/:id/comments", commentHandler.ListComments)
		api.POST("/posts/:id/comments", commentHandler.AddComment)
	}

	return r
}

func (a *App) Run() error {
	deps := Dependencies{
		DB:      a.db,
		Redis:   a.redisClient,
		Storage: a.s3Client,
		JWT:     a.jwtService,
	}
	if a.queueClient != nil {
		deps.Publisher = a.queueClient
	}

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           NewRouter(a.cfg, a.log, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Community service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down community service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Drain in-flight requests before closing the backends they use.
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Community service exited")
	return nil
}
