package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
)

// Seeds a demo job poster and freelancer so local environments have
// accounts to log in with. The account directory owns users in
// production; this tool only exists for development databases.
func main() {
	password := flag.String("password", "changeme123", "Password for both seeded accounts")
	posterEmail := flag.String("poster-email", "poster@example.com", "Email for the demo job poster")
	freelancerEmail := flag.String("freelancer-email", "freelancer@example.com", "Email for the demo freelancer")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatalf("DATABASE_URL must be set")
	}
	db.Init(dsn)

	// Development databases may not have the directory-owned users table yet.
	_, err := db.Conn.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('jobPoster', 'freelancer')),
            money_earned BIGINT DEFAULT 0,
            money_spent BIGINT DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Fatalf("failed to ensure users table: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	seed := []struct {
		name  string
		email string
		role  string
	}{
		{"Demo Poster", *posterEmail, "jobPoster"},
		{"Demo Freelancer", *freelancerEmail, "freelancer"},
	}

	for _, s := range seed {
		_, err := db.Conn.Exec(context.Background(), `
            INSERT INTO users (id, name, email, password, role)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
        `, uuid.NewString(), s.name, s.email, string(hash), s.role)
		if err != nil {
			log.Fatalf("failed to seed %s account: %v", s.role, err)
		}
		fmt.Printf("Seeded %s account %s\n", s.role, s.email)
	}
}
