package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/studygroups-backend/internal/config"
	"github.com/stemsi/studygroups-backend/internal/database"
	"github.com/stemsi/studygroups-backend/internal/logger"
	"github.com/stemsi/studygroups-backend/internal/model"
	"github.com/stemsi/studygroups-backend/internal/repository"
)

// Users are owned by another system; this fills a dev database with people
// who can join study groups.
func main() {
	var count int
	var domain string
	flag.IntVar(&count, "count", 20, "Number of users to create")
	flag.StringVar(&domain, "domain", "example.com", "Email domain for generated users")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "seed_users").Logger()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	names := [][2]string{
		{"Ada", "Lovelace"}, {"Alan", "Turing"}, {"Grace", "Hopper"}, {"Marie", "Curie"},
		{"Isaac", "Newton"}, {"Rosalind", "Franklin"}, {"Niels", "Bohr"}, {"Emmy", "Noether"},
		{"Dmitri", "Mendeleev"}, {"Lise", "Meitner"}, {"Carl", "Gauss"}, {"Dorothy", "Hodgkin"},
	}

	created, skipped := 0, 0
	for i := 0; i < count; i++ {
		n := names[i%len(names)]
		u := &model.User{
			FirstName: n[0],
			LastName:  n[1],
			Email:     fmt.Sprintf("%s.%s%d@%s", strings.ToLower(n[0]), strings.ToLower(n[1]), i+1, domain),
		}

		if err := userRepo.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("email", u.Email).Msg("Failed to create user")
		}
		created++
		log.Debug().Int("id", u.ID).Str("email", u.Email).Msg("User created")
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("Seed completed")
}
