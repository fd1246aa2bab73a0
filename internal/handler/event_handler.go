package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kadraly/kadraly-backend/internal/access"
	"github.com/kadraly/kadraly-backend/internal/middleware"
	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/service"
	"github.com/kadraly/kadraly-backend/pkg/qrcode"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

type EventHandler struct {
	eventService *service.EventService
	statsService *service.StatsService
	qrService    *qrcode.QRService
	resolver     *access.Resolver
	validator    *utils.Validator
}

func NewEventHandler(
	eventService *service.EventService,
	statsService *service.StatsService,
	qrService *qrcode.QRService,
	resolver *access.Resolver,
	validator *utils.Validator,
) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		statsService: statsService,
		qrService:    qrService,
		resolver:     resolver,
		validator:    validator,
	}
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	event, err := h.eventService.CreateEvent(c.Context(), middleware.UserID(c), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(event.OwnerView(), "Event created successfully"))
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanAccessEvent(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view this event"))
	}

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
	}

	// The access code itself is only shown to people who can manage the
	// event.
	if h.resolver.CanModerate(eventID, callerIdentity(c)) {
		return c.JSON(models.SuccessResponse(event.OwnerView(), "Event retrieved successfully"))
	}
	return c.JSON(models.SuccessResponse(event.PublicView(), "Event retrieved successfully"))
}

// GetEventByCode is the guest entry point: the shared code both locates the
// event and authorizes access to it.
func (h *EventHandler) GetEventByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	event, err := h.eventService.GetEventByCode(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
	}

	identity := callerIdentity(c)
	identity.AccessCode = code
	if !h.resolver.CanAccessEvent(event.ID, identity) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view this event"))
	}

	return c.JSON(models.SuccessResponse(event.PublicView(), "Event retrieved successfully"))
}

func (h *EventHandler) GetUserEvents(c *fiber.Ctx) error {
	events, err := h.eventService.GetUserEvents(c.Context(), middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(events, "Events retrieved successfully"))
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can change settings"))
	}

	var req models.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	event, err := h.eventService.UpdateEvent(c.Context(), eventID, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(event.OwnerView(), "Event updated successfully"))
}

func (h *EventHandler) RegenerateAccessCode(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can regenerate the access code"))
	}

	event, err := h.eventService.RegenerateAccessCode(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(event.OwnerView(), "Access code regenerated"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can delete the event"))
	}

	if err := h.eventService.DeleteEvent(c.Context(), eventID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(nil, "Event successfully deleted"))
}

func (h *EventHandler) GetEventStats(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanModerate(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view event stats"))
	}

	stats, err := h.statsService.GetEventStats(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(stats, "Stats retrieved successfully"))
}

// GetEventQR renders the share link as a PNG. Guests reach this through the
// access code, so it is access-checked like any other event read.
func (h *EventHandler) GetEventQR(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanAccessEvent(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view this event"))
	}

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
	}

	size := c.QueryInt("size", 256)
	png, err := h.qrService.GenerateEventQR(event.AccessCode, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (h *EventHandler) ListMembers(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can manage members"))
	}

	members, err := h.eventService.ListMembers(eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(members, "Members retrieved successfully"))
}

func (h *EventHandler) AddMember(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can manage members"))
	}

	var req models.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	member, err := h.eventService.AddMember(eventID, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(member, "Member added successfully"))
}

func (h *EventHandler) RemoveMember(c *fiber.Ctx) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}

	if !h.resolver.IsOwner(eventID, middleware.UserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Only the event owner can manage members"))
	}

	if err := h.eventService.RemoveMember(eventID, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(nil, "Member removed successfully"))
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
