package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kadraly/kadraly-backend/internal/access"
	"github.com/kadraly/kadraly-backend/internal/middleware"
	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/service"
	"github.com/kadraly/kadraly-backend/pkg/captcha"
)

type PhotoHandler struct {
	photoService *service.PhotoService
	eventService *service.EventService
	resolver     *access.Resolver
}

func NewPhotoHandler(photoService *service.PhotoService, eventService *service.EventService, resolver *access.Resolver) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		eventService: eventService,
		resolver:     resolver,
	}
}

// GetEventPhotos returns every photo of the event including the pending
// ones, so it requires moderation rights.
func (h *PhotoHandler) GetEventPhotos(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanModerate(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view all photos"))
	}

	photos, err := h.photoService.GetEventPhotos(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(photos, "Photos retrieved successfully"))
}

// GetGallery is the guest-facing list of approved photos, reachable through
// the access code.
func (h *PhotoHandler) GetGallery(c *fiber.Ctx) error {
	code := c.Params("code")

	event, err := h.eventService.GetEventByCode(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
	}

	identity := callerIdentity(c)
	identity.AccessCode = code
	if !h.resolver.CanAccessEvent(event.ID, identity) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view this gallery"))
	}

	photos, err := h.photoService.GetApprovedEventPhotos(c.Context(), event.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(photos, "Gallery retrieved successfully"))
}

func (h *PhotoHandler) GetPendingPhotos(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanModerate(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to moderate this event"))
	}

	photos, err := h.photoService.GetPendingPhotos(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(photos, "Pending photos retrieved successfully"))
}

// UploadPhotos accepts multipart uploads from the event owner, members, or
// guests with an access code.
func (h *PhotoHandler) UploadPhotos(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	userID := middleware.UserID(c)
	identity := callerIdentity(c)

	if !h.resolver.CanAccessEvent(eventID, identity) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to upload to this event"))
	}

	var guest service.GuestInfo
	if userID == 0 {
		guest.Name = c.FormValue("guest_name")
		guest.Email = c.FormValue("guest_email")
		if guest.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Guest name is required"))
		}

		ok, err := captcha.VerifyTurnstile(c.FormValue("turnstile_token"))
		if err != nil || !ok {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Captcha verification failed"))
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid form data"))
	}

	files := form.File["photo"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("No files uploaded"))
	}

	var uploaded []models.PhotoResponse
	for _, file := range files {
		photo, err := h.photoService.UploadPhoto(c.Context(), eventID, userID, guest, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		}
		uploaded = append(uploaded, models.PhotoResponse{
			ID:         photo.ID,
			EventID:    photo.EventID,
			UserID:     photo.UserID,
			GuestName:  photo.GuestName,
			FileName:   photo.FileName,
			FileSize:   photo.FileSize,
			MimeType:   photo.MimeType,
			IsApproved: photo.IsApproved,
			UploadedAt: photo.UploadedAt,
		})
	}

	return c.JSON(models.SuccessResponse(uploaded, "Photos uploaded successfully"))
}

func (h *PhotoHandler) ApprovePhoto(c *fiber.Ctx) error {
	photoID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid photo ID"))
	}

	photo, err := h.photoService.GetPhoto(c.Context(), photoID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Photo not found"))
	}

	if !h.resolver.CanModerate(photo.EventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to moderate this event"))
	}

	approved, err := h.photoService.ApprovePhoto(c.Context(), photoID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(approved, "Photo approved"))
}

func (h *PhotoHandler) DeletePhoto(c *fiber.Ctx) error {
	photoID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid photo ID"))
	}

	photo, err := h.photoService.GetPhoto(c.Context(), photoID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Photo not found"))
	}

	// Uploaders may remove their own photos; guests and everyone else need
	// moderation rights.
	userID := middleware.UserID(c)
	ownUpload := !photo.IsGuestUpload() && photo.UserID == userID
	if !ownUpload && !h.resolver.CanModerate(photo.EventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to delete this photo"))
	}

	if err := h.photoService.DeletePhoto(c.Context(), photoID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(nil, "Photo deleted successfully"))
}
