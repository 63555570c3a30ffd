// Package config loads server settings from command-line flags with
// environment variables as fallback.
package config

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// InsecurePlaceholderSecret is used when JWT_SECRET is unset. Fine for
// local development, a hazard anywhere else; main logs a warning.
const InsecurePlaceholderSecret = "dev-secret-change-me"

type Config struct {
	Addr       string
	DBPath     string
	JWTSecret  []byte
	CORSOrigin string
	BotEnabled bool
	FeedAddr   string
	SeedPath   string
	WebDir     string
}

func (c *Config) UsingPlaceholderSecret() bool {
	return string(c.JWTSecret) == InsecurePlaceholderSecret
}

func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("chathub", flag.ContinueOnError)
	port := fs.String("port", envOr("PORT", "8000"), "HTTP listen port")
	dbPath := fs.String("db", envOr("CHAT_DB", "./data/chat.db"), "sqlite database path")
	secret := fs.String("secret", envOr("JWT_SECRET", InsecurePlaceholderSecret), "JWT signing secret")
	origin := fs.String("origin", envOr("CORS_ORIGIN", "*"), "allowed CORS origin (* for any)")
	bot := fs.Bool("bot", envOr("CHAT_BOT", "1") != "0", "enable the bot responder")
	feedAddr := fs.String("feed-addr", envOr("FEED_ADDR", ""), "TCP event feed listen address (empty disables)")
	seedPath := fs.String("seed", envOr("CHAT_SEED", ""), "optional JSON seed file")
	webDir := fs.String("web", envOr("CHAT_WEB", "./web"), "static web client directory (empty disables)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *secret == "" {
		return nil, fmt.Errorf("JWT secret must not be empty")
	}

	return &Config{
		Addr:       ":" + *port,
		DBPath:     *dbPath,
		JWTSecret:  []byte(*secret),
		CORSOrigin: *origin,
		BotEnabled: *bot,
		FeedAddr:   *feedAddr,
		SeedPath:   *seedPath,
		WebDir:     *webDir,
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
