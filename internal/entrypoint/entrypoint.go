package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/cache"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	collectionsrepo "github.com/mrlokans/bookshelf/internal/database/collections"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT; SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Optional Redis view cache. Interfaces stay nil when it is disabled so
	// the services never see a typed nil.
	var viewCache collections.ViewCache
	var invalidator catalog.Invalidator
	var cachePinger http_controllers.Pinger
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedis(context.Background(), cfg.Cache)
		if err != nil {
			log.Printf("WARNING: Redis cache unavailable, continuing without it: %v", err)
		} else {
			log.Printf("[CACHE] Collection view cache enabled at %s", cfg.Cache.RedisAddr)
			viewCache, invalidator, cachePinger = redisCache, redisCache, redisCache
			defer redisCache.Close()
		}
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)

	collectionService := collections.NewService(
		collectionsrepo.NewRepository(db.DB),
		bookRepo,
		authorRepo,
		collections.WithCache(viewCache),
		collections.WithAuditor(auditService),
	)
	catalogService := catalog.NewService(bookRepo, authorRepo, invalidator, auditService)

	// Task queue and the audit retention schedule
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks.DatabasePath, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
		}
	} else {
		log.Printf("Task queue disabled, audit events will not be cleaned up")
	}

	routerCfg := http_controllers.RouterConfig{
		Collections:    collectionService,
		Catalog:        catalogService,
		AuditService:   auditService,
		Database:       db,
		Cache:          cachePinger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Version:        version,
	}
	if cleanupScheduler != nil {
		routerCfg.CleanupTrigger = cleanupScheduler
		routerCfg.TaskStatus = taskClient
	}

	var authController *auth.AuthController
	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")
		authController = setupAuth(db, cfg, auditService, &routerCfg)
	} else {
		log.Printf("Authentication mode: none (every request acts as user %d)", auth.DefaultUserID)
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if authController != nil {
			authController.Stop()
		}
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

func setupAuth(db *database.Database, cfg *config.Config, auditor auth.Auditor, routerCfg *http_controllers.RouterConfig) *auth.AuthController {
	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, db.Driver, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, err := authService.HasUsers()
	if err != nil {
		log.Printf("WARNING: could not count users: %v", err)
	} else if !hasUsers {
		log.Printf("No users found. Register via POST /api/users/register or run 'bookshelf create-user'.")
	}

	controller := auth.NewAuthController(authService, sessionManager, cfg.Auth, auditor)

	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
	routerCfg.AuthController = controller
	routerCfg.SessionManager = sessionManager
	routerCfg.TokenValidator = authService
	routerCfg.CSRFSecret = csrfSecret
	routerCfg.SecureCookies = cfg.Auth.SecureCookies

	return controller
}
