package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"microblog/database"
	"microblog/internal/auth"
	"microblog/internal/config"
	"microblog/internal/handlers"
	"microblog/internal/imageprocessor"
	"microblog/internal/logger"
	"microblog/internal/middleware"
	"microblog/internal/repositories"
	"microblog/internal/repositories/memory"
	"microblog/internal/routes"
	"microblog/internal/services"
	"microblog/internal/storage"
	"microblog/internal/validator"
	"microblog/pkg/apperrors"
	"microblog/ws"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, closeRepos, err := OpenRepositories(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", "driver", cfg.Database.Driver, "error", err)
	}
	defer func() {
		if err := closeRepos(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ginRouter, err := SetupRouter(ctx, cfg, repos)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      ginRouter,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server startup error", "error", err)
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// OpenRepositories selects the backing store named by database.driver. The
// returned close function releases the connection pool, if any.
func OpenRepositories(cfg *config.Config) (*repositories.Repositories, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Info("Using in-memory store")
		return memory.NewRepositories(memory.NewStore()), func() error { return nil }, nil
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}

	return repositories.NewGormRepositories(gormDB), sqlDB.Close, nil
}

// SetupRouter builds the whole HTTP stack over repos. The feed hub runs
// until ctx is cancelled.
func SetupRouter(ctx context.Context, cfg *config.Config, repos *repositories.Repositories) (*gin.Engine, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	feed := ws.NewFeedManager()
	go feed.Run(ctx)

	serviceContainer := initializeServices(cfg, repos, storageInstance, feed)
	appHandlers := initializeHandlers(cfg, serviceContainer)
	wsHandler := ws.NewWebSocketHandler(feed, serviceContainer.AuthService, cfg.CORS.AllowedOrigins)

	var static *routes.StaticMount
	if local, ok := storageInstance.(*storage.LocalStorage); ok {
		static = &routes.StaticMount{URLPrefix: cfg.Storage.BaseURL, Dir: local.BasePath()}
	}

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, static)
	return ginRouter, nil
}

func initializeServices(
	cfg *config.Config,
	repos *repositories.Repositories,
	storageInstance storage.Storage,
	feed *ws.FeedManager,
) *services.ServiceContainer {
	hasher := auth.NewBcryptHasher(0)
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.TokenTTL())
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality)

	return &services.ServiceContainer{
		AuthService:     services.NewAuthService(repos.Users, hasher, tokens),
		UserService:     services.NewUserService(repos.Users, hasher),
		PostService:     services.NewPostService(repos.Posts, feed),
		CommentService:  services.NewCommentService(repos.Comments, repos.Posts, feed),
		FavoriteService: services.NewFavoriteService(repos.Favorites, repos.Posts),
		RatingService:   services.NewRatingService(repos.Ratings, repos.Posts, feed),
		UploadService: services.NewUploadService(repos.Users, storageInstance, processor, services.UploadOptions{
			MaxSize:            cfg.Upload.MaxSize,
			AllowedExtensions:  cfg.Upload.AllowedExtensions,
			AvatarMaxDimension: cfg.Upload.AvatarMaxDimension,
		}),
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), svc.AuthService)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, svc.AuthService),
		UserHandler:     handlers.NewUserHandler(baseHandler, svc.UserService, svc.PostService),
		PostHandler:     handlers.NewPostHandler(baseHandler, svc.PostService, svc.RatingService),
		CommentHandler:  handlers.NewCommentHandler(baseHandler, svc.CommentService),
		FavoriteHandler: handlers.NewFavoriteHandler(baseHandler, svc.FavoriteService),
		SearchHandler:   handlers.NewSearchHandler(baseHandler, svc.PostService, svc.UserService),
		UploadHandler:   handlers.NewUploadHandler(baseHandler, svc.UploadService, cfg.Upload.MaxSize),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	return router
}
