package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lumeboard/lumeboard/internal/pkg/entitlement"
	"github.com/lumeboard/lumeboard/internal/pkg/usercontext"
)

type adminIssueRequest struct {
	UserID uint   `json:"user_id"`
	Kind   string `json:"kind"`
}

// HandleAdminIssueEntitlement grants an entitlement without a payment.
// The same per-user uniqueness rule applies as on the paid path.
func HandleAdminIssueEntitlement(c *fiber.Ctx) error {
	admin := usercontext.GetUserContext(c)

	var req adminIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	actor := fmt.Sprintf("admin:%d", admin.UserID)
	grant, err := engine.IssueManual(actor, req.UserID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrAlreadyActive):
			return jsonError(c, fiber.StatusConflict, "already_active", "the user already holds an active entitlement of this kind")
		case errors.Is(err, entitlement.ErrUserNotFound):
			return jsonError(c, fiber.StatusNotFound, "user_not_found", "no user with this id")
		case errors.Is(err, entitlement.ErrUnknownKind):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		default:
			return jsonError(c, fiber.StatusInternalServerError, "internal", "could not issue entitlement")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(grant)
}

// HandleAdminListNotifications exposes the delivery backlog for
// inspection and manual resend of terminally failed messages.
func HandleAdminListNotifications(c *fiber.Ctx) error {
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	records, err := repos.Notification.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load backlog")
	}

	pending, _ := repos.Notification.CountByStatus("pending")
	failed, _ := repos.Notification.CountByStatus("failed")

	return c.JSON(fiber.Map{
		"notifications": records,
		"pending":       pending,
		"failed":        failed,
	})
}
