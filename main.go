package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trcaa/goblog/internal/auth"
	"github.com/trcaa/goblog/internal/httpserver"
	"github.com/trcaa/goblog/internal/store"
)

func main() {
	cfg := loadConfig()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := db.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("bootstrap schema")
	}

	hasher := auth.NewHasher(auth.WithCost(cfg.BcryptCost))
	tokens := auth.NewTokens(auth.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
	})

	srv := httpserver.New(httpserver.Options{
		Users:        db.Users(),
		Posts:        db.Posts(),
		Hasher:       hasher,
		Tokens:       tokens,
		ClientOrigin: cfg.ClientOrigin,
		UploadDir:    cfg.UploadDir,
	})

	log.Info().Str("port", cfg.Port).Msg("starting goblog api")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
