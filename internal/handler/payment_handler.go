package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"github.com/kadraly/kadraly-backend/internal/middleware"
	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/service"
	"github.com/kadraly/kadraly-backend/pkg/payment"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	packageService *service.PackageService
	stripe         *payment.StripeService
	log            *zap.Logger
}

func NewPaymentHandler(
	paymentService *service.PaymentService,
	packageService *service.PackageService,
	stripe *payment.StripeService,
	log *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		packageService: packageService,
		stripe:         stripe,
		log:            log,
	}
}

func (h *PaymentHandler) GetPackages(c *fiber.Ctx) error {
	packages, err := h.packageService.GetAllPackages()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(packages, "Packages retrieved successfully"))
}

func (h *PaymentHandler) GetPackage(c *fiber.Ctx) error {
	packageID, err := parseID(c, "packageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid package ID"))
	}

	pkg, err := h.packageService.GetPackageByID(packageID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Package not found"))
	}
	return c.JSON(models.SuccessResponse(pkg, "Package retrieved successfully"))
}

func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	packageID, err := parseID(c, "packageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid package ID"))
	}

	resp, err := h.paymentService.CreateCheckoutSession(middleware.UserID(c), packageID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(resp, "Checkout session created"))
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	history, err := h.paymentService.GetPurchaseHistory(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(history, "Purchase history retrieved"))
}

// HandleWebhook processes Stripe events. It must always answer 200 for events
// we handled or don't care about, otherwise Stripe keeps retrying.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	event, err := h.stripe.ConstructWebhookEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn("stripe webhook signature verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webhook signature"))
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.log.Error("failed to parse checkout session", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event payload"))
		}
		if err := h.paymentService.CompletePurchase(c.Context(), session.ID); err != nil {
			h.log.Error("failed to complete purchase",
				zap.String("session_id", session.ID),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not complete purchase"))
		}
	default:
		h.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
	}

	return c.JSON(models.SuccessResponse(nil, "Webhook processed"))
}
