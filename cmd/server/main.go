package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/archive"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/catalog"
	"github.com/gdg-garage/mosaic-visa/internal/config"
	"github.com/gdg-garage/mosaic-visa/internal/database"
	"github.com/gdg-garage/mosaic-visa/internal/handlers"
	"github.com/gdg-garage/mosaic-visa/internal/logger"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"github.com/gdg-garage/mosaic-visa/internal/notifier"
	"github.com/gdg-garage/mosaic-visa/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	// Connect to Database
	db := database.Connect(cfg)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			zl.Fatal("Failed to load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
		}
	}

	sessions := newSessionStore(cfg, zl)

	var n notifier.Notifier
	if cfg.DiscordBotToken != "" {
		dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			zl.Warn("Discord notifier not initialized", zap.Error(err))
		} else {
			n = notifier.NewDiscordNotifier(dg, cfg.DiscordNotificationsChannelID)
		}
	}

	m := metrics.New()
	arch := archive.New(db)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, sessions)
	authHandler.SetLogger(zl)
	formHandler := handlers.NewFormHandler(db, sessions, application.NewValidator(cat, nil), arch, n, m, zl)
	adminHandler := handlers.NewAdminHandler(db, arch, authHandler, m, zl, cfg.PublicURL)
	registrationHandler := handlers.NewRegistrationHandler(authHandler, m, zl)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, authHandler, formHandler, adminHandler, registrationHandler, cat, m)

	// Start Server
	zl.Info("Starting server", zap.String("port", cfg.Port), zap.String("session_backend", cfg.SessionBackend))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}

func newSessionStore(cfg *config.Config, zl *zap.Logger) session.Store {
	switch cfg.SessionBackend {
	case "redis":
		store := session.NewRedisStore(session.NewRedisClient(cfg.RedisAddr), cfg.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if !store.Healthy(ctx) {
			zl.Fatal("Redis session store unreachable", zap.String("addr", cfg.RedisAddr))
		}
		return store
	case "memory", "":
		return session.NewMemoryStore(cfg.SessionMaxEntries, cfg.SessionTTL)
	default:
		zl.Fatal("Unknown session backend", zap.String("backend", cfg.SessionBackend))
		return nil
	}
}
