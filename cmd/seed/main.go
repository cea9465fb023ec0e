package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gidxpay/internal/config"
	"gidxpay/internal/db"
	"gidxpay/internal/model"
	"gidxpay/internal/repository"
)

// seedUser is one demo account with a starting balance.
type seedUser struct {
	Email        string
	Password     string
	CoinsBalance string
	CashBalance  string
}

var seedUsers = []seedUser{
	{Email: "alice@example.com", Password: "password1", CoinsBalance: "250.00", CashBalance: "100.00"},
	{Email: "bob@example.com", Password: "password2", CoinsBalance: "40.00", CashBalance: "0.00"},
	{Email: "carol@example.com", Password: "password3", CoinsBalance: "0.00", CashBalance: "500.00"},
}

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Wallet{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	walletRepo := repository.NewWalletRepository(gormDB)
	ctx := context.Background()

	created := 0
	for _, s := range seedUsers {
		if err := seedOne(ctx, userRepo, walletRepo, s); err != nil {
			log.Fatalf("Failed to seed %s: %v", s.Email, err)
		}
		created++
	}

	log.Printf("Seed completed: %d users processed", created)
}

func seedOne(ctx context.Context, userRepo repository.UserRepository, walletRepo repository.WalletRepository, s seedUser) error {
	existing, err := userRepo.FindByEmail(ctx, s.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		log.Printf("user %s already exists, skipping", s.Email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), 10)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: s.Email, PasswordHash: string(hash)}
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	coins, err := decimal.NewFromString(s.CoinsBalance)
	if err != nil {
		return fmt.Errorf("parse coins balance: %w", err)
	}
	cash, err := decimal.NewFromString(s.CashBalance)
	if err != nil {
		return fmt.Errorf("parse cash balance: %w", err)
	}

	wallet := &model.Wallet{UserID: user.ID, CoinsBalance: coins, CashBalance: cash}
	if err := walletRepo.Create(ctx, wallet); err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	log.Printf("seeded %s (user id %d)", s.Email, user.ID)
	return nil
}
