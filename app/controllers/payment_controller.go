package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/internal/pkg/chainverify"
	"github.com/lumeboard/lumeboard/internal/pkg/entitlement"
	"github.com/lumeboard/lumeboard/internal/pkg/env"
	"github.com/lumeboard/lumeboard/internal/pkg/usercontext"
)

type verifyPaymentRequest struct {
	Network string `json:"network"` // "tron" or "bsc"
	Kind    string `json:"kind"`    // "activation" or "edit_access"
}

// HandleVerifyPayment checks the chain for the expected inbound transfer
// and, on a match, converts it into a time-boxed grant. The sequence is
// strictly verify, then issue, then notify; a notification failure never
// undoes the grant.
func HandleVerifyPayment(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	network := chainverify.NetworkKind(req.Network)
	cfg, ok := verifier.Network(network)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "network must be tron or bsc")
	}

	price, method, err := priceFor(req.Kind, network)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	result, err := verifier.Verify(c.Context(), network, cfg.WalletAddress, price)
	if err != nil {
		switch {
		case errors.Is(err, chainverify.ErrAPIKeyMissing), errors.Is(err, chainverify.ErrAddressMissing):
			// Operator misconfiguration: verification is unavailable, the
			// user cannot fix this by retrying
			return jsonError(c, fiber.StatusServiceUnavailable, "verification_unavailable", "payment verification is not available right now")
		default:
			// External oracle failure: retryable, keep the cause visible
			return jsonError(c, fiber.StatusBadGateway, "verification_error", err.Error())
		}
	}

	if !result.Matched {
		// A normal negative: the transfer may simply not be indexed yet
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "no_matching_payment",
			"message": result.Reason,
			"retry":   true,
		})
	}

	amount, _ := strconv.ParseFloat(price, 64)
	grant, err := engine.Issue(user.UserID, req.Kind, method, amount, result.TxRef)
	if err != nil {
		if errors.Is(err, entitlement.ErrAlreadyActive) {
			return jsonError(c, fiber.StatusConflict, "already_active", "an active entitlement of this kind already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not issue entitlement")
	}

	sendConfirmation(user, grant)

	return c.Status(fiber.StatusCreated).JSON(grant)
}

func priceFor(kind string, network chainverify.NetworkKind) (price string, method string, err error) {
	switch kind {
	case models.EntitlementKindActivation:
		price = env.GetEnv("ACTIVATION_PRICE_USD", "50")
	case models.EntitlementKindEditAccess:
		price = env.GetEnv("EDIT_ACCESS_PRICE_USD", "19")
	default:
		return "", "", fmt.Errorf("kind must be %s or %s", models.EntitlementKindActivation, models.EntitlementKindEditAccess)
	}

	switch network {
	case chainverify.NetworkTron:
		method = models.PaymentMethodTRC20
	case chainverify.NetworkBSC:
		method = models.PaymentMethodBEP20
	}
	return price, method, nil
}

func sendConfirmation(user usercontext.UserContext, grant *models.Entitlement) {
	switch grant.Kind {
	case models.EntitlementKindActivation:
		dispatcher.Send(user.Email, "Your LumeBoard activation is live",
			fmt.Sprintf("<p>Hi %s,</p><p>your activation code is <strong>%s</strong>. It is valid until %s.</p>",
				user.Username, grant.ActivationCode, grant.ExpiresAt.Format("2006-01-02 15:04 MST")))
	case models.EntitlementKindEditAccess:
		dispatcher.Send(user.Email, "Edit access unlocked",
			fmt.Sprintf("<p>Hi %s,</p><p>you can edit your display until %s.</p>",
				user.Username, grant.ExpiresAt.Format("2006-01-02 15:04 MST")))
	}
}
