// Package main provides a tool to seed the database with an admin user and
// the default category taxonomy.
//
// Usage:
//
//	DATA_PATH=~/glyphkit/data ADMIN_PASSWORD=secret go run ./cmd/seed
//	DATA_PATH=~/glyphkit/data go run ./cmd/seed --categories-only
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glyphkit/glyphkit-server/internal/auth"
	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/id"
	"github.com/glyphkit/glyphkit-server/internal/store"
	"github.com/glyphkit/glyphkit-server/internal/store/sqlite"
)

var categoriesOnly = flag.Bool("categories-only", false, "Seed categories without creating an admin user")

// defaultCategories is the starter taxonomy for a fresh icon library.
var defaultCategories = []struct {
	name string
	slug string
}{
	{"Navigation", "navigation"},
	{"Communication", "communication"},
	{"Media", "media"},
	{"Commerce", "commerce"},
	{"System", "system"},
	{"Social", "social"},
	{"Weather", "weather"},
	{"Toggle", "toggle"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "glyphkit", "data")
	}

	dbPath := filepath.Join(dataPath, "glyphkit.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	seedCategories(ctx, s)

	if !*categoriesOnly {
		seedAdminUser(ctx, s)
	}

	fmt.Println("Done.")
}

func seedCategories(ctx context.Context, s store.Store) {
	for _, c := range defaultCategories {
		now := time.Now()
		category := &domain.Category{
			ID:        id.MustGenerate("cat"),
			Name:      c.name,
			Slug:      c.slug,
			CreatedAt: now,
			CreatedBy: "seed",
			UpdatedAt: now,
			UpdatedBy: "seed",
		}

		err := s.CreateCategory(ctx, category)
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			fmt.Printf("Category %q already exists, skipping\n", c.name)
		case err != nil:
			log.Fatalf("Failed to create category %q: %v", c.name, err)
		default:
			fmt.Printf("Created category %q (%s)\n", c.name, category.ID)
		}
	}
}

func seedAdminUser(ctx context.Context, s store.Store) {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@localhost"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Println("ADMIN_PASSWORD not set, skipping admin user creation")
		return
	}

	if _, err := s.GetUserByUsername(ctx, username); err == nil {
		fmt.Printf("User %q already exists, skipping\n", username)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("usr"),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user %q: %v", username, err)
	}

	fmt.Printf("Created admin user %q (%s)\n", username, user.ID)
}
