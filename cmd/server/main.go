package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kavya-apps/userhub/internal/account"
	"github.com/kavya-apps/userhub/internal/auth"
	"github.com/kavya-apps/userhub/internal/config"
	"github.com/kavya-apps/userhub/internal/middleware"
	"github.com/kavya-apps/userhub/internal/store"
	"github.com/kavya-apps/userhub/internal/upload"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	users := store.NewUserStore(mongoClient.Database(cfg.MongoDB))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── PostgreSQL (audit trail) ─────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	audit := store.NewAuditStore(pgPool)
	if err := audit.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── Redis (profile cache) ────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	cache := store.NewUserCache(rdb)

	// ── MinIO (asset host) ───────────────────────────────────
	assets, err := store.NewAssetStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioBucket, cfg.PublicAssetBase, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── Upload staging ───────────────────────────────────────
	staging, err := upload.NewStaging(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload staging: %v", err)
	}

	// ── Service & handlers ───────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	svc := account.NewService(users, assets, cache, audit, tokens)
	handler := account.NewHandler(svc, staging)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/users/register", handler.Register)
		r.Post("/users/login", handler.Login)
		r.Get("/users/{id}", handler.GetUserByID)
		r.Post("/upload", handler.Upload)

		// Bearer-token protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))
			r.Put("/users/profile", handler.UpdateProfile)
			r.Delete("/users/profile/{userId}", handler.DeleteProfile)
			r.Get("/users", handler.ListUsers)
			r.With(middleware.RequireAdmin).Get("/admin/events", handler.Events)
		})
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
