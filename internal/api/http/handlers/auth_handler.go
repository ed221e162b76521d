package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

const (
	dashboardPath = "/dashboard"
	loginPath     = "/login"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, signup and logout.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.AuthMiddleware
	resolver auth.SessionResolver
	cookie   CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.AuthMiddleware, resolver auth.SessionResolver, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, resolver: resolver, cookie: cookie}
}

// Index handles GET /: signed-in users go to their dashboard, everyone else
// to the login page.
func (h *AuthHandler) Index(c *fiber.Ctx) error {
	target := loginPath
	if id := h.sessions.SessionID(c); id != "" {
		if _, err := h.resolver.Lookup(c.UserContext(), id); err == nil {
			target = dashboardPath
		}
	}
	return c.Redirect(target, http.StatusSeeOther)
}

// LoginPage handles GET /login. A live session skips straight to the dashboard.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if id := h.sessions.SessionID(c); id != "" {
		if _, err := h.resolver.Lookup(c.UserContext(), id); err == nil {
			return c.Redirect(dashboardPath, http.StatusSeeOther)
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"authenticated": false}})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sess, err := h.auth.Login(c.UserContext(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	h.setCookie(c, sess)
	return c.JSON(fiber.Map{"data": sessionResponse(sess)})
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sess, err := h.auth.Signup(c.UserContext(), domain.Registration{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	h.setCookie(c, sess)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(sess)})
}

// ForgotPassword handles POST /forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "if the address is registered, a reset link is on its way"},
	})
}

// Logout handles POST /logout. It succeeds even without a live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), h.sessions.SessionID(c)); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.ClearCookie(h.cookie.Name)
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": loginPath}})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, sess *domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func sessionResponse(sess *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		User:      userResponse(sess.User, nil),
		ExpiresAt: sess.ExpiresAt,
		Redirect:  dashboardPath,
	}
}
