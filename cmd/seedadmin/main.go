// Command seedadmin creates the initial administrator account. Regular users
// self-register over the API; admin accounts only come from this command.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/infrastructure/postgres"
	"github.com/skladpro/warehouse-api/pkg/config"
	"github.com/skladpro/warehouse-api/pkg/logger"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	email := flag.String("email", "", "admin email")
	fullName := flag.String("name", "", "admin full name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	if len(*password) < 8 {
		log.Fatal().Msg("password must be at least 8 characters")
	}

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	userRepo := postgres.NewUserRepository(pool)
	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		FullName:     *fullName,
		Role:         entity.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := userRepo.Create(user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			log.Fatal().Str("username", *username).Msg("username already taken")
		}
		log.Fatal().Err(err).Msg("create admin user")
	}

	log.Info().Str("username", user.Username).Str("id", user.ID).Msg("admin user created")
}
