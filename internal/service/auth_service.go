package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/pkg/bcrypt"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/email"
	"github.com/kadraly/kadraly-backend/pkg/jwt"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	userRepo     *repository.UserRepository
	emailService *email.EmailService
	store        cache.Store
}

func NewAuthService(userRepo *repository.UserRepository, emailService *email.EmailService, store cache.Store) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		store:        store,
	}
}

func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	exists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("email already registered")
	}

	hashed, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(&models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashed,
	})
	if err != nil {
		return nil, err
	}

	// Welcome email is fire-and-forget; registration must not fail on it.
	go func() {
		_ = s.emailService.SendWelcomeEmail(user.Email, user.FullName)
	}()

	token, err := jwt.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := jwt.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

// ForgotPassword always reports success to the caller so the endpoint cannot
// be used to probe which emails are registered. Reset tokens live in the
// key-value store with a one-hour TTL.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return nil
	}

	token := utils.GenerateToken(48)
	userID := []byte(strconv.FormatUint(uint64(user.ID), 10))
	if err := s.store.Set(ctx, resetTokenKey(token), userID, resetTokenTTL); err != nil {
		return err
	}

	return s.emailService.SendPasswordResetEmail(user.Email, token)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	b, err := s.store.Get(ctx, resetTokenKey(token))
	if err != nil {
		return errors.New("invalid or expired reset token")
	}
	_ = s.store.Del(ctx, resetTokenKey(token))

	userID, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		return errors.New("invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(uint(userID))
	if err != nil {
		return err
	}

	hashed, err := bcrypt.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	return s.userRepo.Update(user)
}

func resetTokenKey(token string) string {
	return "auth:reset:" + token
}
