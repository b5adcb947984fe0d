package handler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"apotek-system/internal/database"
	"apotek-system/internal/database/models"
	"apotek-system/internal/utils"
)

func testHandler(t *testing.T) (*UserHandler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewUserHandler(db, utils.NewTokenManager("test-secret")), db
}

func TestRegister(t *testing.T) {
	h, db := testHandler(t)
	ctx := context.Background()

	result, err := h.Register(ctx, RegisterInput{
		Username: "apoteker1",
		FullName: "Siti Aminah",
		Role:     "pharmacist",
		Password: "rahasia123",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.Token == "" {
		t.Error("token is empty")
	}
	if result.User.Username != "apoteker1" || result.User.Role != "pharmacist" {
		t.Errorf("user = %+v", result.User)
	}

	var stored models.User
	if err := db.Where("username = ?", "apoteker1").First(&stored).Error; err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	if stored.PasswordHash == "rahasia123" {
		t.Error("password stored in plaintext")
	}

	if _, err := h.Register(ctx, RegisterInput{
		Username: "apoteker1",
		FullName: "Orang Lain",
		Role:     "cashier",
		Password: "lain",
		IsActive: true,
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: err = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	h, _ := testHandler(t)
	ctx := context.Background()

	if _, err := h.Register(ctx, RegisterInput{
		Username: "kasir1",
		FullName: "Kasir Satu",
		Role:     "cashier",
		Password: "benar123",
		IsActive: true,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := h.Login(ctx, "kasir1", "benar123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("token is empty")
	}

	if _, err := h.Login(ctx, "kasir1", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := h.Login(ctx, "tidakada", "benar123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGetUsers(t *testing.T) {
	h, _ := testHandler(t)
	ctx := context.Background()

	for _, name := range []string{"satu", "dua"} {
		if _, err := h.Register(ctx, RegisterInput{
			Username: name,
			FullName: name,
			Role:     "cashier",
			Password: "pw" + name,
			IsActive: true,
		}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	users, err := h.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("user count = %d, want 2", len(users))
	}
}
