// Command createadmin bootstraps an approved ADMIN account.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"bandhub/internal/config"
	"bandhub/internal/database"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("createadmin: %v", err)
	}
}

func run() error {
	username := flag.String("username", "", "admin username (required)")
	name := flag.String("name", "", "display name (defaults to username)")
	email := flag.String("email", "", "admin email (required)")
	phone := flag.String("phone", "", "phone number")
	flag.Parse()

	if *username == "" || *email == "" {
		flag.Usage()
		return fmt.Errorf("username and email are required")
	}
	if *name == "" {
		*name = *username
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	users := services.NewUserService(dbManager.DB(), nil, mailer.New(cfg), mailer.NewComposer(cfg.FromName, cfg.AppURL))
	user, err := users.CreateUser(context.Background(), services.CreateUserInput{
		Username: *username,
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Role:     models.RoleAdmin,
		Password: password,
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("admin account created", "user_id", user.ID, "username", user.Username, "email", user.Email)
	return nil
}

// readPassword prompts twice on a terminal, or reads one line from piped stdin.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
