package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/smerino/gestion/internal/config"
	"github.com/smerino/gestion/internal/hash"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
	"github.com/smerino/gestion/internal/service"
)

// Seeds the first superadmin so empresas can be provisioned. Safe to
// re-run; an existing email is left untouched.
func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	email := service.NormalizeEmail(config.EnvDefault("SEED_EMAIL", ""))
	password := config.EnvDefault("SEED_PASSWORD", "")
	nombre := config.EnvDefault("SEED_NOMBRE", "Superadmin")
	config.MustNonEmpty(email, "SEED_EMAIL")
	config.MustNonEmpty(password, "SEED_PASSWORD")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := config.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		log.Fatalf("hash error: %v", err)
	}

	r := repo.GormRepo{DB: db}
	u := &models.Usuario{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: pwHash,
		Nombre:       nombre,
		Rol:          models.RolSuperadmin,
		Activo:       true,
	}
	if err := r.CreateUsuario(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			log.Printf("superadmin %s already exists, nothing to do", email)
			return
		}
		log.Fatalf("seed error: %v", err)
	}
	log.Printf("superadmin created: %s (%s)", email, u.ID)
}
