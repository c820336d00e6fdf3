// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime configuration shared by the server and worker.
type Config struct {
	Port             string
	DatabaseURL      string
	RedisAddr        string // used by asynq and the realtime bridge; empty disables both
	JWTSecret        string
	ExpirySweepHours int // how often the job-expiry cron fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		// Fall back to the discrete DB_* variables used by docker-compose.
		if os.Getenv("DB_HOST") == "" {
			return nil, fmt.Errorf("DATABASE_URL or DB_HOST is required")
		}
		dbURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		if host := os.Getenv("REDIS_HOST"); host != "" {
			port := os.Getenv("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			redisAddr = host + ":" + port
		}
	}

	sweep := 1
	if s := os.Getenv("JOB_EXPIRY_SWEEP_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("JOB_EXPIRY_SWEEP_HOURS must be a positive integer, got %q", s)
		}
		sweep = v
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:             port,
		DatabaseURL:      dbURL,
		RedisAddr:        redisAddr,
		JWTSecret:        secret,
		ExpirySweepHours: sweep,
	}, nil
}
