// Command seedadmin creates the first super administrator.
// Uso: SEED_EMAIL=admin@casitasteto.cl SEED_PASSWORD=... go run ./cmd/seedadmin
package main

import (
	"context"
	"os"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/infra"
	"casitas/internal/model"
	"casitas/internal/repository"
	"casitas/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatal().Msg("SEED_EMAIL and SEED_PASSWORD are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.MigrationsEnabled {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	auth := service.NewAuthService(repository.NewUsuarioRepository(db), repository.NewResidenteRepository(db), cfg)
	u, err := auth.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email:    email,
		Password: password,
		Nombre:   "Administrador",
		Rol:      model.RolSuperAdministrador,
	})
	if err != nil {
		if service.KindOf(err) == service.KindConflict {
			log.Info().Str("email", email).Msg("seedadmin: user already exists")
			return
		}
		log.Fatal().Err(err).Msg("seedadmin: create user")
	}
	log.Info().Str("id", u.ID).Str("email", u.Email).Msg("seedadmin: super administrator created")
}
