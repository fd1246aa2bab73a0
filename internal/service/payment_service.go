package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/payment"
)

type PaymentService struct {
	stripe       *payment.StripeService
	userRepo     *repository.UserRepository
	packageRepo  *repository.CreditPackageRepository
	purchaseRepo *repository.UserCreditPurchaseRepository
	cache        *cache.Cache
}

func NewPaymentService(
	stripe *payment.StripeService,
	userRepo *repository.UserRepository,
	packageRepo *repository.CreditPackageRepository,
	purchaseRepo *repository.UserCreditPurchaseRepository,
	c *cache.Cache,
) *PaymentService {
	return &PaymentService{
		stripe:       stripe,
		userRepo:     userRepo,
		packageRepo:  packageRepo,
		purchaseRepo: purchaseRepo,
		cache:        c,
	}
}

func (s *PaymentService) CreateCheckoutSession(userID, packageID uint) (*models.CheckoutResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, errors.New("credit package not found")
	}
	if !pkg.IsActive {
		return nil, errors.New("credit package is not available")
	}

	session, err := s.stripe.CreateCheckoutSession(user.Email, pkg.StripePrice, map[string]string{
		"user_id":    strconv.FormatUint(uint64(userID), 10),
		"package_id": strconv.FormatUint(uint64(packageID), 10),
	})
	if err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Create(&models.UserCreditPurchase{
		UserID:          userID,
		CreditPackageID: packageID,
		StripeSessionID: session.ID,
		AmountPaid:      pkg.Price,
		Status:          "pending",
	}); err != nil {
		return nil, err
	}

	return &models.CheckoutResponse{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// CompletePurchase is driven by the Stripe webhook: it credits the user and
// invalidates their cached event list, which mirrors the limits the credits
// raise.
func (s *PaymentService) CompletePurchase(ctx context.Context, sessionID string) error {
	purchase, err := s.purchaseRepo.GetBySessionID(sessionID)
	if err != nil {
		return errors.New("purchase not found")
	}
	if purchase.Status == "completed" {
		// Stripe retries webhooks; crediting twice would be worse than
		// ignoring the duplicate.
		return nil
	}

	pkg, err := s.packageRepo.GetByID(purchase.CreditPackageID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(purchase.UserID)
	if err != nil {
		return err
	}

	user.EventLimit += pkg.EventLimit
	user.PhotoLimit += pkg.PhotoLimit
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	now := time.Now()
	purchase.Status = "completed"
	purchase.CompletedAt = &now
	if err := s.purchaseRepo.Update(purchase); err != nil {
		return err
	}

	s.cache.Delete(ctx, cache.UserEventsKey(user.ID))
	return nil
}

func (s *PaymentService) GetPurchaseHistory(userID uint) ([]models.UserCreditPurchase, error) {
	return s.purchaseRepo.GetByUserID(userID)
}
