package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sahilchouksey/taskboard-api/config"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/utils"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment variables: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := utils.NewLogger(env.GO_ENV, env.LOG_LEVEL)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	seedUser := database.SeedUser{
		Name:     getEnvOrDefault("SEED_USER_NAME", "Demo User"),
		Email:    os.Getenv("SEED_USER_EMAIL"),
		Password: os.Getenv("SEED_USER_PASSWORD"),
	}
	if seedUser.Email == "" || seedUser.Password == "" {
		log.Fatal("SEED_USER_EMAIL and SEED_USER_PASSWORD must be set")
	}

	store, err := database.StartGORM(env, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Taskboard - Database Seeding")
	fmt.Println(separator)

	if err := database.RunSeeds(store.GetDB(), logger, seedUser); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println(separator)
	fmt.Printf("Seeding completed. Log in as %s.\n", seedUser.Email)
	fmt.Println(separator)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
