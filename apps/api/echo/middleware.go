package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core/profile"
)

// contextProfileMiddleware loads the authenticated profile into the context.
// Unknown and deactivated profiles are rejected.
func contextProfileMiddleware(svc profile.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			p, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == profile.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding profile by ID")
			}
			if !p.IsActive {
				return errAccountDeactivated
			}
			ctx.Set(contextProfileKey, p)
			return next(ctx)
		}
	}
}

func facultyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := getContextProfile(ctx)
		if err != nil {
			return err
		}
		if !p.IsFaculty() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// requestMetricsMiddleware handles the error itself so the recorded status is the one sent.
func requestMetricsMiddleware(observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			observer.ObserveHTTPRequest(ctx.Request().Method, ctx.Path(), ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
