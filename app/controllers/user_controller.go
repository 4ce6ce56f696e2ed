package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/internal/pkg/usercontext"
)

type entitlementView struct {
	models.Entitlement
	EffectiveStatus string `json:"effective_status"`
}

// HandleGetEntitlements lists all grants the user has ever held, with the
// derived effective status alongside the stored one.
func HandleGetEntitlements(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	entitlements, err := engine.ListForUser(user.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load entitlements")
	}

	now := time.Now()
	views := make([]entitlementView, 0, len(entitlements))
	for _, e := range entitlements {
		views = append(views, entitlementView{
			Entitlement:     e,
			EffectiveStatus: e.EffectiveStatus(now),
		})
	}

	activationActive, err := engine.IsEffectivelyActive(user.UserID, models.EntitlementKindActivation)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check entitlement")
	}
	editActive, err := engine.IsEffectivelyActive(user.UserID, models.EntitlementKindEditAccess)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check entitlement")
	}

	return c.JSON(fiber.Map{
		"entitlements":       views,
		"activation_active":  activationActive,
		"edit_access_active": editActive,
	})
}
