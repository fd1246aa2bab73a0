package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/pkg/bcrypt"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/email"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

const emailChangeTTL = time.Hour

type UserService struct {
	userRepo     *repository.UserRepository
	emailService *email.EmailService
	store        cache.Store
}

func NewUserService(userRepo *repository.UserRepository, emailService *email.EmailService, store cache.Store) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: emailService,
		store:        store,
	}
}

func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *UserService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uint, req models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	hashed, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	return s.userRepo.Update(user)
}

// InitiateEmailChange sends a confirmation link to the new address. The
// change is only applied when the token comes back through
// CompleteEmailChange.
func (s *UserService) InitiateEmailChange(ctx context.Context, userID uint, req models.ChangeEmailRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return errors.New("password is incorrect")
	}

	taken, err := s.userRepo.EmailExists(req.NewEmail)
	if err != nil {
		return err
	}
	if taken {
		return errors.New("email already in use")
	}

	token := utils.GenerateToken(48)
	payload := []byte(strconv.FormatUint(uint64(userID), 10) + "|" + req.NewEmail)
	if err := s.store.Set(ctx, emailChangeKey(token), payload, emailChangeTTL); err != nil {
		return err
	}

	return s.emailService.SendEmailChangeEmail(req.NewEmail, token)
}

func (s *UserService) CompleteEmailChange(ctx context.Context, token string) (*models.User, error) {
	b, err := s.store.Get(ctx, emailChangeKey(token))
	if err != nil {
		return nil, errors.New("invalid or expired verification token")
	}
	_ = s.store.Del(ctx, emailChangeKey(token))

	userIDStr, newEmail, ok := strings.Cut(string(b), "|")
	if !ok {
		return nil, errors.New("invalid or expired verification token")
	}
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return nil, errors.New("invalid or expired verification token")
	}

	user, err := s.userRepo.GetByID(uint(userID))
	if err != nil {
		return nil, err
	}

	user.Email = newEmail
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func emailChangeKey(token string) string {
	return "auth:email-change:" + token
}
