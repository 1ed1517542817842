package utils

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/edusphere/backend/models"
	"github.com/edusphere/backend/repository"
)

// SeedAdminUser upserts the admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
// Skipped when the env vars are unset.
func SeedAdminUser(ctx context.Context, users repository.UserRepository) error {
	email := NormalizeEmail(os.Getenv("ADMIN_EMAIL"))
	pass := os.Getenv("ADMIN_PASSWORD")

	if email == "" || pass == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := users.FindByEmail(ctx, email); err == nil {
		log.Println("Admin user already exists:", email)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(pass)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		// Another instance may have seeded it first.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	log.Println("Admin user seeded:", email)
	return nil
}
