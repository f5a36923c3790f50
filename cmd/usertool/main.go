package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/biopeak/analytics/internal/db"
	"github.com/biopeak/analytics/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// small helper to create users, there is no sign-up endpoint
func main() {
	username := flag.String("username", "", "username of the new user")
	password := flag.String("password", "", "password of the new user")
	dbHost := flag.String("db-host", "localhost", "postgres host")
	dbPort := flag.String("db-port", "5432", "postgres port")
	dbName := flag.String("db-name", "biopeak_analytics", "postgres database name")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Println("both -username and -password are required")
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: *dbHost,
		DBPort: *dbPort,
		DBName: *dbName,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	passwordHash, err := pkg.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %s", err)
	}

	userID := uuid.NewString()
	if _, err := dbPool.Exec(
		ctx,
		`INSERT INTO app_user (id, username, password_hash, created_at) VALUES ($1, $2, $3, NOW())`,
		userID, *username, passwordHash,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			log.Fatalf("user [%s] already exists", *username)
		}
		log.Fatalf("insert user: %s", err)
	}

	fmt.Printf("user [%s] created with id: %s\n", *username, userID)
}
