package main

import (
	"context"
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/robfig/cron/v3"

	"github.com/mrdaaan1/cofounder-ai/config"
	"github.com/mrdaaan1/cofounder-ai/internal/auth"
	"github.com/mrdaaan1/cofounder-ai/internal/bootstrap"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/llm"
	"github.com/mrdaaan1/cofounder-ai/internal/mentor/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: bootstrap.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	provider, err := llm.FromConfig(&cfg.Mentor)
	if err != nil {
		log.Fatalf("mentor provider: %v", err)
	}
	mentor := service.NewMentor(provider)
	log.Printf("mentor provider: %s", mentor.ProviderName())

	var authClient *firebaseauth.Client
	if cfg.Firebase.Enabled {
		authClient, err = auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
	}

	sessions := bootstrap.NewSessionManager(cfg, db, rdb, mentor)

	// Evict sessions idle past the TTL, flushing unsaved drafts first.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 10m", func() {
		sessions.SweepIdle(cfg.Mentor.SessionTTL)
	}); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "cofounder-ai",
		Cfg:         cfg,
		DB:          db,
		Redis:       rdb,
		Mentor:      mentor,
		AuthClient:  authClient,
		Sessions:    sessions,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
