package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kadraly/kadraly-backend/internal/access"
	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/service"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

type TimelineHandler struct {
	timelineService *service.TimelineService
	resolver        *access.Resolver
	validator       *utils.Validator
}

func NewTimelineHandler(timelineService *service.TimelineService, resolver *access.Resolver, validator *utils.Validator) *TimelineHandler {
	return &TimelineHandler{
		timelineService: timelineService,
		resolver:        resolver,
		validator:       validator,
	}
}

// GetTimeline is readable by anyone who can see the event, including guests
// with the access code.
func (h *TimelineHandler) GetTimeline(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanAccessEvent(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to view this event"))
	}

	entries, err := h.timelineService.GetTimeline(c.Context(), eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(entries, "Timeline retrieved successfully"))
}

func (h *TimelineHandler) CreateEntry(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanManageTimeline(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to manage this timeline"))
	}

	var req models.TimelineEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	entry, err := h.timelineService.CreateEntry(c.Context(), eventID, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(entry, "Timeline entry created"))
}

func (h *TimelineHandler) UpdateEntry(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}
	entryID, err := parseID(c, "entryId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid entry ID"))
	}

	if !h.resolver.CanManageTimeline(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to manage this timeline"))
	}

	var req models.UpdateTimelineEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	entry, err := h.timelineService.UpdateEntry(c.Context(), entryID, eventID, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(entry, "Timeline entry updated"))
}

func (h *TimelineHandler) DeleteEntry(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}
	entryID, err := parseID(c, "entryId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid entry ID"))
	}

	if !h.resolver.CanManageTimeline(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to manage this timeline"))
	}

	if err := h.timelineService.DeleteEntry(c.Context(), entryID, eventID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(nil, "Timeline entry deleted"))
}

// AdjustTimes shifts every entry of the event by a single offset, for when
// the whole schedule slips.
func (h *TimelineHandler) AdjustTimes(c *fiber.Ctx) error {
	eventID, err := parseID(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if !h.resolver.CanManageTimeline(eventID, callerIdentity(c)) {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("You don't have permission to manage this timeline"))
	}

	var req models.AdjustTimelineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	entries, err := h.timelineService.AdjustTimes(c.Context(), eventID, req.OffsetMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(entries, "Timeline adjusted"))
}
