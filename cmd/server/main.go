package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chathub/internal/api"
	"chathub/internal/bot"
	"chathub/internal/config"
	"chathub/internal/feed"
	"chathub/internal/message"
	"chathub/internal/presence"
	"chathub/internal/user"
	"chathub/internal/ws"
	"chathub/pkg/database"
	"chathub/pkg/models"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.UsingPlaceholderSecret() {
		log.Println("warn: JWT_SECRET not set; tokens are signed with an insecure development secret")
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	if cfg.SeedPath != "" {
		sf, err := database.LoadSeedFile(cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		n, err := database.Seed(db, sf)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded %d rows from %s", n, cfg.SeedPath)
	}

	users := user.NewStore(db)
	messages := message.NewStore(db)
	tracker := presence.NewTracker(presence.DefaultWindow)
	hub := ws.NewHub()

	var feedSrv *feed.Server
	if cfg.FeedAddr != "" {
		feedSrv = feed.New()
		if err := feedSrv.Start(cfg.FeedAddr); err != nil {
			log.Fatal(err)
		}
	}

	publish := func(m models.Message) {
		hub.Broadcast(m)
		if feedSrv != nil {
			feedSrv.Publish(m)
		}
	}

	var responder *bot.Responder
	if cfg.BotEnabled {
		responder = bot.New(messages, 0, publish)
	}

	srv := api.New(api.Deps{
		Secret:   cfg.JWTSecret,
		Origin:   cfg.CORSOrigin,
		WebDir:   cfg.WebDir,
		Users:    users,
		Messages: messages,
		Presence: tracker,
		Hub:      hub,
		Bot:      responder,
		Publish:  publish,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if responder != nil {
		responder.Close()
	}
	hub.Close()
	if feedSrv != nil {
		feedSrv.Close()
	}
}
