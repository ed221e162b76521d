package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// LoginPath is where expired sessions are sent.
const LoginPath = "/login"

// MiddlewareConfig bundles the dependencies of the global middlewares.
type MiddlewareConfig struct {
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Timeout    time.Duration
	CookieName string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(cfg))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(cfg MiddlewareConfig) fiber.Handler {
	logger := cfg.Logger
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = renderError(c, cfg, err)
			}
		}()
		return c.Next()
	}
}

func renderError(c *fiber.Ctx, cfg MiddlewareConfig, err error) error {
	domainErr := fromFiberError(err)
	cfg.Metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	switch domainErr.Code {
	case apperrors.CodeAuthExpired:
		if cfg.CookieName != "" {
			c.ClearCookie(cfg.CookieName)
		}
		if isPageRequest(c) {
			return c.Redirect(LoginPath, http.StatusSeeOther)
		}
		c.Set(fiber.HeaderLocation, LoginPath)
	case apperrors.CodeFetch:
		domainErr = domainErr.WithDetail("retry", c.OriginalURL())
	}

	if domainErr.HTTPStatus >= 500 {
		cfg.Logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr),
		)
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// fromFiberError maps framework errors such as unknown routes or oversized
// bodies onto the portal's error codes.
func fromFiberError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return apperrors.ToDomainError(err)
	}
	code := apperrors.CodeInternal
	switch {
	case fe.Code == fiber.StatusNotFound:
		code = apperrors.CodeNotFound
	case fe.Code == fiber.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case fe.Code == fiber.StatusForbidden:
		code = apperrors.CodeForbidden
	case fe.Code < 500:
		code = apperrors.CodeValidation
	}
	return apperrors.NewDomainError(code, fe.Message, fe.Code, nil)
}

// isPageRequest reports whether the browser navigated to a page rather than
// issuing an action call.
func isPageRequest(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet {
		return false
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
