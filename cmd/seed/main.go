package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ouiouimanus/api/internal/config"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	tables := flag.Int("tables", 8, "Number of dining tables to create")
	flag.Parse()

	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	if *email == "" {
		*email = "admin@ouioui.com"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *name == "" {
		*name = "Admin"
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to reach database: %v", err)
	}

	queries := database.New(pool)

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hash password: %v", err)
	}

	user, err := queries.CreateUser(ctx, database.CreateUserParams{
		Email:        *email,
		Name:         *name,
		PasswordHash: string(hashed),
		Role:         enum.UserRoleAdmin,
	})
	if err != nil {
		log.Fatalf("Create admin user: %v", err)
	}
	log.Printf("Created admin user %s (%s)", user.Email, user.ID)

	for i := 1; i <= *tables; i++ {
		table, err := queries.CreateTable(ctx, database.CreateTableParams{
			Name:     fmt.Sprintf("T%d", i),
			Capacity: 4,
		})
		if err != nil {
			log.Fatalf("Create table T%d: %v", i, err)
		}
		log.Printf("Created table %s (%s)", table.Name, table.ID)
	}

	log.Println("Seed complete")
}
