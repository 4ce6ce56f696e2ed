package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/internal/pkg/usercontext"
)

type displayRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Public *bool  `json:"public"`
}

// HandleCreateDisplay creates the user's display. Gated on an effectively
// active activation entitlement; the gate is checked before anything is
// persisted.
func HandleCreateDisplay(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	active, err := engine.IsEffectivelyActive(user.UserID, models.EntitlementKindActivation)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check entitlement")
	}
	if !active {
		return jsonError(c, fiber.StatusForbidden, "activation_required", "an active activation entitlement is required to create a display")
	}

	if _, err := repos.Display.GetByUserID(user.UserID); err == nil {
		return jsonError(c, fiber.StatusConflict, "display_exists", "you already have a display")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check display")
	}

	var req displayRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	display := &models.Display{
		UserID:    user.UserID,
		Title:     req.Title,
		Body:      req.Body,
		ShareLink: uuid.New().String(),
		Public:    req.Public == nil || *req.Public,
	}
	if err := repos.Display.Create(display); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not create display")
	}

	return c.Status(fiber.StatusCreated).JSON(display)
}

// HandleUpdateDisplay mutates the user's display. Gated on an effectively
// active edit-access entitlement.
func HandleUpdateDisplay(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	display, err := repos.Display.GetByUserID(user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "display_not_found", "you have no display yet")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load display")
	}

	active, err := engine.IsEffectivelyActive(user.UserID, models.EntitlementKindEditAccess)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check entitlement")
	}
	if !active {
		return jsonError(c, fiber.StatusForbidden, "edit_access_required", "an active edit-access entitlement is required to modify a display")
	}

	var req displayRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	if req.Title != "" {
		display.Title = req.Title
	}
	if req.Body != "" {
		display.Body = req.Body
	}
	if req.Public != nil {
		display.Public = *req.Public
	}

	if err := repos.Display.Update(display); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not update display")
	}

	return c.JSON(display)
}

// HandleGetMyDisplay returns the authenticated user's display
func HandleGetMyDisplay(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	display, err := repos.Display.GetByUserID(user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "display_not_found", "you have no display yet")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load display")
	}

	return c.JSON(display)
}

// HandleGetDisplayByShareLink returns a public display by its share link
func HandleGetDisplayByShareLink(c *fiber.Ctx) error {
	shareLink := c.Params("sharelink")

	display, err := repos.Display.GetByShareLink(shareLink)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "display_not_found", "no display with this share link")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load display")
	}

	if !display.Public {
		return jsonError(c, fiber.StatusNotFound, "display_not_found", "no display with this share link")
	}

	return c.JSON(display)
}
