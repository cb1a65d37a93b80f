package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobboard/internal/config"
	"github.com/jobboard/internal/email"
	"github.com/jobboard/internal/handler"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/push"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/service"
	"github.com/jobboard/internal/startup"
	"github.com/jobboard/internal/storage"
	"github.com/jobboard/internal/storage/memory"
	"github.com/jobboard/internal/ws"
	"github.com/jobboard/migrations"
)

func main() {
	logger.SetPrefix("api")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL and in-memory code store (no external services required)")
	flag.Parse()

	logger.Info("starting API service")
	cfg := config.Load()

	var embeddedDB *embeddedpostgres.EmbeddedPostgres
	if *dev {
		var err error
		embeddedDB, err = startEmbeddedPostgres(cfg)
		if err != nil {
			logger.Errorf("embedded postgres: %v", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := embeddedDB.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		logger.Errorf("parse db config: %v", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConnections())
	poolCfg.MinConns = 4

	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second)
	defer pool.Close()

	runMigrations(pool)
	if *migrate && !*dev {
		return
	}
	logger.Info("database connected, migrations applied")

	var store storage.CodeStore
	if *dev {
		logger.Info("using in-memory code store")
		store = memory.New()
	} else {
		store = startup.ConnectRedisWithRetry(cfg.Redis.URL, 60*time.Second)
	}
	defer store.Close()

	vapidKeys, err := push.EnsureVAPIDKeys("")
	if err != nil {
		logger.Errorf("vapid keys: %v", err)
		os.Exit(1)
	}
	cfg.PushVAPIDPublicKey = vapidKeys.PublicKey

	profileRepo := repository.NewProfileRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	appRepo := repository.NewApplicationRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)
	callRepo := repository.NewVideoCallRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	pushRepo := repository.NewPushRepository(pool)
	favoriteRepo := repository.NewFavoriteRepository(pool)

	pushSender := push.NewSender(pushRepo, vapidKeys)
	mailer := email.NewSender(&cfg.SMTP)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := ws.NewHub(msgRepo, cfg.MaxWSConnections, pushSender)

	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	authSvc := service.NewAuthService(profileRepo, sessionRepo, store, mailer)
	msgSvc := service.NewMessageService(msgRepo, profileRepo, hub, pushSender)
	appSvc := service.NewApplicationService(appRepo, candidateRepo, jobRepo, profileRepo, hub, pushSender)
	callSvc := service.NewCallService(callRepo, msgRepo, msgSvc, hub)

	authH := handler.NewAuthHandler(authSvc)
	msgH := handler.NewMessageHandler(msgSvc)
	jobH := handler.NewJobHandler(jobRepo, profileRepo)
	appH := handler.NewApplicationHandler(appSvc, appRepo, jobRepo)
	userH := handler.NewUserHandler(profileRepo, candidateRepo, favoriteRepo, jobRepo)
	callH := handler.NewCallHandler(callSvc)
	pushH := handler.NewPushHandler(pushRepo)
	billingH := handler.NewBillingHandler(cfg.BillingWhatsApp)
	configH := handler.NewConfigHandler(cfg)
	wsH := handler.NewWSHandler(hub, cfg.CORSAllowedOrigins)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.RecoverJSON)
	// Skip compression for WebSocket, otherwise the ResponseWriter loses
	// http.Hijacker and the upgrade fails with a 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			chimw.Compress(5)(next).ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.RateLimitAPI)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })
	r.Get("/api/config/push", configH.GetPushConfig)
	r.Get("/api/config/call", configH.GetCallConfig)

	r.Post("/api/auth/request-code", authH.RequestCode)
	r.Post("/api/auth/verify-code", authH.VerifyCode)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(authSvc))
		r.Delete("/api/auth/session", authH.Logout)

		r.Get("/api/profiles/me", userH.GetMe)
		r.Put("/api/profiles/me", userH.UpdateMe)
		r.Get("/api/profiles/{id}", userH.GetProfile)

		r.Get("/api/jobs", jobH.ListJobs)
		r.Post("/api/jobs", jobH.CreateJob)
		r.Get("/api/jobs/{id}", jobH.GetJob)
		r.Post("/api/jobs/{id}/close", jobH.CloseJob)
		r.Post("/api/jobs/{id}/applications", appH.Apply)
		r.Get("/api/jobs/{id}/applications", appH.ListByJob)
		r.Put("/api/applications/{id}/status", appH.UpdateStatus)
		r.Get("/api/users/me/applications", appH.ListMine)

		r.Get("/api/users/me/favorites", userH.ListFavorites)
		r.Post("/api/users/me/favorites", userH.AddFavorite)
		r.Delete("/api/users/me/favorites/{jobId}", userH.RemoveFavorite)

		r.Get("/api/skills", userH.ListSkills)
		r.Get("/api/users/me/skills", userH.ListMySkills)
		r.Put("/api/users/me/skills", userH.SetMySkill)
		r.Delete("/api/users/me/skills/{skillId}", userH.RemoveMySkill)

		r.Get("/api/conversations", msgH.GetConversations)
		r.Get("/api/conversations/unread-count", msgH.GetUnreadCount)
		r.Get("/api/conversations/{userId}/messages", msgH.GetThread)
		r.Post("/api/messages", msgH.SendMessage)

		r.Post("/api/calls", callH.StartCall)
		r.Post("/api/calls/{id}/activate", callH.ActivateCall)
		r.Post("/api/calls/{id}/end", callH.EndCall)

		r.Get("/api/billing/contact-link", billingH.ContactLink)

		r.Post("/api/push/subscribe", pushH.Subscribe)
		r.Delete("/api/push/subscribe", pushH.Unsubscribe)

		r.Get("/ws", wsH.ServeWS)
	})

	webDist := "./web/dist"
	if info, err := os.Stat(webDist); err == nil && info.IsDir() {
		r.Get("/*", spaHandler(webDist))
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	hubCancel()
	hubWg.Wait()
	logger.Info("hub stopped")
	srvWg.Wait()
	logger.Info("server goroutine exited")
}

func spaHandler(dir string) http.HandlerFunc {
	fs := http.Dir(dir)
	fileServer := http.FileServer(fs)
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
		if path == "" {
			path = "index.html"
		}
		if f, err := fs.Open(path); err != nil {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
		} else {
			f.Close()
			fileServer.ServeHTTP(w, r)
		}
	}
}

func runMigrations(pool *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	names, err := fs.Glob(migrations.Files, "*.sql")
	if err != nil {
		logger.Errorf("list migrations: %v", err)
		os.Exit(1)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.Files.ReadFile(name)
		if err != nil {
			logger.Errorf("read migration %s: %v", name, err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			logger.Errorf("run migration %s: %v", name, err)
			os.Exit(1)
		}
	}
	logger.Info("migrations applied")
}

func startEmbeddedPostgres(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		port     = 5432
		user     = "jobboard"
		password = "jobboard_secret"
		database = "jobboard"
	)

	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "embedded-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Database.URL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
