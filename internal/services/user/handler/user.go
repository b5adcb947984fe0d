package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"apotek-system/internal/database/models"
	"apotek-system/internal/utils"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResult struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Username string
	FullName string
	Role     string
	Password string
	IsActive bool
}

type UserHandler struct {
	db  *gorm.DB
	jwt *utils.TokenManager
}

func NewUserHandler(db *gorm.DB, tokenManager *utils.TokenManager) *UserHandler {
	return &UserHandler{
		db:  db,
		jwt: tokenManager,
	}
}

func userToDomain(u models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func (s *UserHandler) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", input.Username).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("username %q: %w", input.Username, ErrUsernameTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: string(pwHash),
		Role:         input.Role,
		IsActive:     input.IsActive,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, exp, err := s.jwt.GenerateToken(user.ID, user.Username, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{
		User:      userToDomain(user),
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

func (s *UserHandler) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.jwt.GenerateToken(user.ID, user.Username, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{
		User:      userToDomain(user),
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

func (s *UserHandler) GetUsers(ctx context.Context) ([]User, error) {
	var records []models.User
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, len(records))
	for i, u := range records {
		users[i] = userToDomain(u)
	}
	return users, nil
}
