package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-training/oauth-login/pkg/config"
	"github.com/go-training/oauth-login/pkg/logger"
	"github.com/go-training/oauth-login/pkg/provider"
	"github.com/go-training/oauth-login/pkg/session"
	"github.com/go-training/oauth-login/pkg/web"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

const appTitle = "OAuth Login"

func main() {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		// The logger is not configured yet, so fall back to the default one.
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.New(cfg.IsProduction(), cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize session store using factory pattern
	storeType := session.ParseStoreType(cfg.Session.Store)
	sessionStore, err := session.NewStore(session.Config{
		Type: storeType,
		TTL:  cfg.Session.TTL,
		Redis: session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		slog.Error("Failed to create session store", "type", storeType, "error", err)
		os.Exit(1)
	}
	closeStore := func() {}
	if rs, ok := sessionStore.(*session.RedisStore); ok {
		closeStore = rs.Close
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			slog.Error("Redis session store unreachable", "addr", cfg.Redis.Addr, "error", err)
			rs.Close()
			os.Exit(1)
		}
	}
	slog.Info("Session store initialized", "type", storeType, "ttl", cfg.Session.TTL)

	sessions := session.NewManager(sessionStore, cfg.Session.Secret, session.CookieOptions{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	})

	oauthClient := provider.NewClient(provider.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       cfg.OAuth.Scopes,
		AuthURL:      cfg.OAuth.AuthURL,
		TokenURL:     cfg.OAuth.TokenURL,
		UserInfoURL:  cfg.OAuth.UserInfoURL,
		Timeout:      cfg.OAuth.UpstreamTimeout,
	})
	slog.Info("Using OAuth provider",
		"auth_url", cfg.OAuth.AuthURL,
		"redirect_url", cfg.OAuth.RedirectURL,
		"scopes", cfg.OAuth.Scopes,
	)

	router := web.NewRouter(web.NewHandler(appTitle, oauthClient, sessions), cfg.StaticDir)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second, // 10 seconds
		WriteTimeout: 10 * time.Second, // 10 seconds
		IdleTimeout:  60 * time.Second, // 60 seconds
	}

	m := graceful.NewManager()
	m.AddRunningJob(func(ctx context.Context) error {
		slog.Info("OAuth login server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			return err
		}
		return nil
	})
	m.AddShutdownJob(shutdownJob(srv, closeStore))

	<-m.Done()
}

// shutdownJob drains srv and then releases the session store, so in-flight
// requests never see a closed store.
func shutdownJob(srv *http.Server, closeStore func()) func() error {
	return func() error {
		slog.Info("Shutdown signal received, shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(ctx)
		closeStore()
		if err != nil {
			slog.Error("Server forced to shutdown", "err", err)
			return err
		}
		slog.Info("Server shutdown gracefully")
		return nil
	}
}
