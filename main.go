package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/auth"
	intconfig "tourdesk/internal/config"
	router "tourdesk/internal/http"
	"tourdesk/internal/http/handlers"
	"tourdesk/internal/repositories"
	"tourdesk/internal/services"
	"tourdesk/internal/tourapi"
)

func main() {
	env := intconfig.LoadEnv()
	if err := env.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := intconfig.ConnectDB(env)
	defer intconfig.Close()

	users := repositories.AdminUserRepository{DB: db}
	submissions := repositories.SubmissionRepository{DB: db}
	if err := users.EnsureTable(ctx); err != nil {
		log.Fatalf("failed to prepare admin_users: %v", err)
	}
	if err := submissions.EnsureTable(ctx); err != nil {
		log.Fatalf("failed to prepare booking_submissions: %v", err)
	}

	var (
		store   repositories.SessionStore
		revoked repositories.RevocationList
	)
	if rdb := intconfig.ConnectRedis(env); rdb != nil {
		rs := repositories.NewRedisStore(rdb, env.WizardSessionTTL)
		store, revoked = rs, rs
	} else {
		log.Println("REDIS_ADDR not set, wizard sessions kept in memory")
		ms := repositories.NewMemoryStore(env.WizardSessionTTL)
		store, revoked = ms, ms
		go sweep(ctx, ms, time.Minute)
	}

	tours := tourapi.New(env.TourAPIBaseURL, env.TourAPIToken, env.TourAPITimeout)
	tokens := auth.NewTokenIssuer(env.JWTSecret, env.JWTTTL)

	authSvc := services.AuthService{Users: users, Tokens: tokens, Revoked: revoked}
	if err := authSvc.Bootstrap(ctx, env.AdminUsername, env.AdminPassword); err != nil {
		log.Fatalf("failed to bootstrap admin user: %v", err)
	}

	a := &handlers.API{
		DB:          db,
		Wizard:      services.NewWizardService(tours, store, submissions),
		Auth:        authSvc,
		Docs:        services.DocsService{Tours: tours},
		Submissions: services.SubmissionService{Repo: submissions},
	}
	r := router.NewRouter(env, router.Deps{API: a, Tokens: tokens, Revoked: revoked})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("tourdesk listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

func sweep(ctx context.Context, ms *repositories.MemoryStore, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := ms.Sweep(); n > 0 {
				log.Printf("[STORE] action=sweep removed=%d", n)
			}
		}
	}
}
