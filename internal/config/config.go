package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAuthURL     = "https://auth.riotgames.com/api/v1/authorization"
	defaultTimeout     = 120 * time.Second
	defaultMaxAttempts = 3
	defaultOpsAddr     = ":8082"
)

func Load() {
	/*
		.env-local for a local run, .env.docker for docker;
		start.sh exports the file name in START depending on
		how it was invoked (./start.sh or ./start.sh docker)
	*/
	if err := godotenv.Load(os.Getenv("START")); err != nil {
		log.Fatalf("Env file not found")
	}

	if os.Getenv("DISCORD_TOKEN") == "" {
		log.Fatalf("DISCORD_TOKEN is not set in environment")
	}
	if os.Getenv("APP_ID") == "" {
		log.Fatalf("APP_ID is not set in environment")
	}
	if os.Getenv("MYSQL_DSN") == "" {
		log.Fatalf("MySQLDSN is not set in environment")
	}
	if os.Getenv("MONGO_URI") == "" {
		log.Fatalf("MongoURI is not set in environment")
	}
	if os.Getenv("MONGO_DB_NAME") == "" {
		log.Fatalf("MongoDB is not set in environment")
	}
}

func AuthURL() string {
	if v := os.Getenv("RIOT_AUTH_URL"); v != "" {
		return v
	}
	return defaultAuthURL
}

func EnrollTimeout() time.Duration {
	v := os.Getenv("ENROLL_TIMEOUT")
	if v == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("ENROLL_TIMEOUT is not a valid duration: %s", v)
	}
	return d
}

func MaxAttempts() int {
	v := os.Getenv("ENROLL_MAX_ATTEMPTS")
	if v == "" {
		return defaultMaxAttempts
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Fatalf("ENROLL_MAX_ATTEMPTS is not a valid count: %s", v)
	}
	return n
}

func OpsAddr() string {
	if v := os.Getenv("OPS_ADDR"); v != "" {
		return v
	}
	return defaultOpsAddr
}
