// Command admin manages accounts. Admin status can only be granted here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"scaffold/internal/auth"
	"scaffold/internal/cache"
	"scaffold/internal/config"
	"scaffold/internal/database"
	"scaffold/internal/repository"
	"scaffold/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create-admin <username> <email>           - Create an admin with a generated password")
	fmt.Println("  go run ./cmd/admin create-user [-admin] <username> <email> <password>")
	fmt.Println("  go run ./cmd/admin promote <username>                        - Grant admin to an existing user")
	fmt.Println("  go run ./cmd/admin list-admins                               - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		auth.NewHasher(cfg.BcryptCost),
		auth.NewTokens(cfg.JWTSecret),
		auth.NewRevocations(cache.InitRedis(cfg.RedisURL)),
	)
	ctx := context.Background()

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "create-admin":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		user, password, err := svc.CreateAdmin(ctx, args[0], args[1])
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("✅ Created admin %s (ID: %d)\n", user.Username, user.ID)
		fmt.Printf("Password: %s\n", password)
		fmt.Println("This password is shown once. Store it now.")

	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ExitOnError)
		admin := fs.Bool("admin", false, "grant admin")
		_ = fs.Parse(args)
		if fs.NArg() != 3 {
			usage()
			os.Exit(1)
		}
		user, err := svc.Provision(ctx, service.ProvisionInput{
			Username: fs.Arg(0),
			Email:    fs.Arg(1),
			Password: fs.Arg(2),
			Admin:    *admin,
		})
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("✅ Created user %s (ID: %d, admin: %v)\n", user.Username, user.ID, user.Admin)

	case "promote":
		if len(args) != 1 {
			usage()
			os.Exit(1)
		}
		user, err := svc.Promote(ctx, args[0])
		if err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
		fmt.Printf("✅ %s (ID: %d) is an admin\n", user.Username, user.ID)

	case "list-admins":
		admins, err := svc.ListAdmins(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch admins: %v", err)
		}
		if len(admins) == 0 {
			fmt.Println("No admins found in the system")
			return
		}
		fmt.Printf("Found %d admin(s):\n", len(admins))
		for _, a := range admins {
			fmt.Printf("  - ID: %d, Username: %s, Email: %s\n", a.ID, a.Username, a.Email)
		}

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}
