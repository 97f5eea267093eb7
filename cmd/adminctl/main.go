// Command adminctl creates a pre-verified operator account directly in the
// database, bypassing the email verification flow. Intended for seeding
// support accounts on fresh deployments.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/calcpay/server/internal/server/config"
	"github.com/calcpay/server/internal/server/models"
	"github.com/calcpay/server/internal/server/password"
	"github.com/calcpay/server/internal/server/repositories/repomanager"
)

func getSimpleText(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func getPassword() ([]byte, error) {
	fmt.Println("Enter password")
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {

	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	email, err := getSimpleText(reader, "Enter email")
	if err != nil {
		log.Fatalf("%v", err)
	}
	firstName, err := getSimpleText(reader, "Enter first name")
	if err != nil {
		log.Fatalf("%v", err)
	}
	lastName, err := getSimpleText(reader, "Enter last name")
	if err != nil {
		log.Fatalf("%v", err)
	}
	plaintext, err := getPassword()
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		log.Fatalf("db migration error: %v", err)
	}

	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(string(plaintext))
	if err != nil {
		log.Fatalf("hashing error: %v", err)
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}

	repo := m.Accounts(db)
	account, err = repo.Create(ctx, account)
	if err != nil {
		log.Fatalf("account creation error: %v", err)
	}

	// operator accounts skip the email verification flow
	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		log.Fatalf("account verification error: %v", err)
	}

	fmt.Println("Success!")
}
